package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/query"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

// patientsListTTL bounds staleness of the roster between
// invalidations (seconds).
const patientsListTTL = 120

func patientsListKey() string {
	return fmt.Sprintf("%s:list", query.FamilyPatients)
}

// RosterService implements the patient roster workflow: one cached
// list query ordered by name, in-memory search over the fetched
// rows, and create-with-invalidation. Patients are never updated or
// deleted here.
type RosterService struct {
	gateway providers.DataGateway
	cache   *query.Cache
}

// NewRosterService creates a roster service.
func NewRosterService(gateway providers.DataGateway, cache *query.Cache) *RosterService {
	return &RosterService{gateway: gateway, cache: cache}
}

// List returns the full roster ordered ascending by name. A
// non-empty search term filters the fetched rows by case-insensitive
// substring match on the name only; the gateway ordering is
// preserved through the filter.
func (s *RosterService) List(ctx context.Context, search string) ([]entities.Patient, error) {
	data, err := s.cache.Fetch(ctx, patientsListKey(), patientsListTTL, func(ctx context.Context) ([]byte, error) {
		return s.gateway.Query(ctx, "patients", nil, &providers.Order{Column: "name", Ascending: true})
	})
	if err != nil {
		return nil, err
	}

	var patients []entities.Patient
	if err := json.Unmarshal(data, &patients); err != nil {
		return nil, apperrors.NewExternalError("malformed patients response", err)
	}

	if search == "" {
		return patients, nil
	}

	needle := strings.ToLower(search)
	filtered := make([]entities.Patient, 0, len(patients))
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Create inserts a new patient through the gateway and invalidates
// the roster family, so the next list includes the new row in order.
func (s *RosterService) Create(ctx context.Context, name, email, phone string) (*entities.Patient, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, apperrors.NewValidationError("phone is required")
	}

	row := entities.Patient{Name: name, Email: email, Phone: phone}
	inserted, err := s.gateway.Insert(ctx, "patients", row)
	if err != nil {
		return nil, err
	}

	var rows []entities.Patient
	if err := json.Unmarshal(inserted, &rows); err != nil || len(rows) == 0 {
		return nil, apperrors.NewExternalError("malformed insert response", err)
	}

	s.cache.InvalidateFamily(ctx, query.FamilyPatients, "patient created")
	return &rows[0], nil
}
