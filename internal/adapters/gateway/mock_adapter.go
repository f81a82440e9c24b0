package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

// MockAdapter is an in-memory Gateway for local development and
// tests: two tables, a credential map and issued tokens, with the
// same observable behavior as the hosted backend.
type MockAdapter struct {
	mu           sync.Mutex
	patients     []entities.Patient
	appointments []entities.Appointment
	nextID       int64
	credentials  map[string]string
	tokens       map[string]entities.User
}

// NewMockAdapter creates an empty in-memory gateway.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		nextID:      1,
		credentials: make(map[string]string),
		tokens:      make(map[string]entities.User),
	}
}

// RegisterUser adds a credential pair accepted by SignInWithPassword.
func (m *MockAdapter) RegisterUser(email, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials[email] = password
}

// Query returns all rows of table matching the filters as a JSON array.
func (m *MockAdapter) Query(ctx context.Context, table string, filters []providers.Filter, order *providers.Order) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch table {
	case TablePatients:
		out := make([]entities.Patient, 0)
		for _, p := range m.patients {
			if matchPatient(p, filters) {
				out = append(out, p)
			}
		}
		if order != nil && order.Column == "name" {
			sort.Slice(out, func(i, j int) bool {
				if order.Ascending {
					return out[i].Name < out[j].Name
				}
				return out[i].Name > out[j].Name
			})
		}
		return json.Marshal(out)
	case TableAppointments:
		out := make([]entities.Appointment, 0)
		for _, ap := range m.appointments {
			if matchAppointment(ap, filters) {
				out = append(out, ap)
			}
		}
		return json.Marshal(out)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown table %q", table))
	}
}

// Insert stores row and returns the inserted row with an assigned id.
func (m *MockAdapter) Insert(ctx context.Context, table string, row any) (json.RawMessage, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode row", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch table {
	case TablePatients:
		var p entities.Patient
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, apperrors.NewValidationError("malformed patient row")
		}
		p.ID = m.nextID
		m.nextID++
		m.patients = append(m.patients, p)
		return json.Marshal([]entities.Patient{p})
	case TableAppointments:
		var ap entities.Appointment
		if err := json.Unmarshal(data, &ap); err != nil {
			return nil, apperrors.NewValidationError("malformed appointment row")
		}
		ap.ID = m.nextID
		m.nextID++
		m.appointments = append(m.appointments, ap)
		return json.Marshal([]entities.Appointment{ap})
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown table %q", table))
	}
}

// Delete removes the row with the given id; missing rows are ignored.
func (m *MockAdapter) Delete(ctx context.Context, table string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch table {
	case TablePatients:
		for i, p := range m.patients {
			if p.ID == id {
				m.patients = append(m.patients[:i], m.patients[i+1:]...)
				return nil
			}
		}
		return nil
	case TableAppointments:
		for i, ap := range m.appointments {
			if ap.ID == id {
				m.appointments = append(m.appointments[:i], m.appointments[i+1:]...)
				return nil
			}
		}
		return nil
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown table %q", table))
	}
}

// SignInWithPassword validates credentials and issues a token.
func (m *MockAdapter) SignInWithPassword(ctx context.Context, email, password string) (*entities.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.credentials[email]
	if !ok || stored != password {
		return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	user := entities.User{ID: uuid.NewString(), Email: email}
	token := uuid.NewString()
	m.tokens[token] = user
	return &user, token, nil
}

// SignOut revokes a token.
func (m *MockAdapter) SignOut(ctx context.Context, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, accessToken)
	return nil
}

// GetCurrentUser resolves a token to its user, nil when revoked.
func (m *MockAdapter) GetCurrentUser(ctx context.Context, accessToken string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.tokens[accessToken]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func matchPatient(p entities.Patient, filters []providers.Filter) bool {
	for _, f := range filters {
		var got string
		switch f.Column {
		case "id":
			got = strconv.FormatInt(p.ID, 10)
		case "name":
			got = p.Name
		case "email":
			got = p.Email
		case "phone":
			got = p.Phone
		default:
			return false
		}
		if got != f.Value {
			return false
		}
	}
	return true
}

func matchAppointment(ap entities.Appointment, filters []providers.Filter) bool {
	for _, f := range filters {
		var got string
		switch f.Column {
		case "id":
			got = strconv.FormatInt(ap.ID, 10)
		case "patient_id":
			got = strconv.FormatInt(ap.PatientID, 10)
		case "patient_name":
			got = ap.PatientName
		case "date":
			got = ap.Date
		case "time":
			got = ap.Time
		default:
			return false
		}
		if got != f.Value {
			return false
		}
	}
	return true
}
