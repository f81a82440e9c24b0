package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

// Gateway table names.
const (
	TablePatients     = "patients"
	TableAppointments = "appointments"
)

// PostgresAdapter implements the DataGateway against a local
// Postgres, for practices that self-host instead of using the hosted
// backend. The contract stays row-level: the same two tables, the
// same JSON row arrays.
type PostgresAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresAdapter creates a self-hosted data gateway adapter.
func NewPostgresAdapter(client *postgres.Client) providers.DataGateway {
	return &PostgresAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Query returns all rows of table matching the filters as a JSON array.
func (a *PostgresAdapter) Query(ctx context.Context, table string, filters []providers.Filter, order *providers.Order) (json.RawMessage, error) {
	ds := a.db.From(table)
	for _, f := range filters {
		if f.Op != providers.FilterOpEq {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported filter operator %q", f.Op))
		}
		ds = ds.Where(goqu.Ex{f.Column: f.Value})
	}
	if order != nil {
		col := goqu.C(order.Column)
		if order.Ascending {
			ds = ds.Order(col.Asc())
		} else {
			ds = ds.Order(col.Desc())
		}
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to query %s", table), err)
	}
	defer rows.Close()

	switch table {
	case TablePatients:
		return scanRows(rows, func(r *sql.Rows) (entities.Patient, error) {
			var p entities.Patient
			err := r.Scan(&p.ID, &p.Name, &p.Email, &p.Phone)
			return p, err
		})
	case TableAppointments:
		return scanRows(rows, func(r *sql.Rows) (entities.Appointment, error) {
			var ap entities.Appointment
			err := r.Scan(&ap.ID, &ap.PatientID, &ap.PatientName, &ap.Date, &ap.Time)
			return ap, err
		})
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown table %q", table))
	}
}

// Insert stores row and returns the inserted rows with assigned ids.
func (a *PostgresAdapter) Insert(ctx context.Context, table string, row any) (json.RawMessage, error) {
	record, err := toRecord(row)
	if err != nil {
		return nil, err
	}

	query, args, err := a.db.Insert(table).
		Rows(record).
		Returning(goqu.Star()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	dbRow := a.client.DB().QueryRowContext(ctx, query, args...)

	switch table {
	case TablePatients:
		var p entities.Patient
		if err := dbRow.Scan(&p.ID, &p.Name, &p.Email, &p.Phone); err != nil {
			return nil, apperrors.NewInternalError("failed to insert patient", err)
		}
		return json.Marshal([]entities.Patient{p})
	case TableAppointments:
		var ap entities.Appointment
		if err := dbRow.Scan(&ap.ID, &ap.PatientID, &ap.PatientName, &ap.Date, &ap.Time); err != nil {
			return nil, apperrors.NewInternalError("failed to insert appointment", err)
		}
		return json.Marshal([]entities.Appointment{ap})
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown table %q", table))
	}
}

// Delete removes the row with the given id. Missing rows are not an
// error, matching the hosted backend's delete semantics.
func (a *PostgresAdapter) Delete(ctx context.Context, table string, id int64) error {
	query, args, err := a.db.Delete(table).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to delete from %s", table), err)
	}
	return nil
}

func scanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) (json.RawMessage, error) {
	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan row", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read rows", err)
	}
	return json.Marshal(out)
}

// toRecord converts an arbitrary row value into a goqu record via
// its JSON form, so callers can pass the same structs they send to
// the hosted adapter.
func toRecord(row any) (goqu.Record, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode row", err)
	}
	var record goqu.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperrors.NewInternalError("failed to decode row", err)
	}
	// Never write a caller-supplied id; ids are gateway-assigned.
	delete(record, "id")
	return record, nil
}
