package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/query"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

// appointmentsByDateTTL bounds staleness of a day's schedule between
// invalidations (seconds).
const appointmentsByDateTTL = 60

func appointmentsDateKey(date string) string {
	return fmt.Sprintf("%s:date:%s", query.FamilyAppointments, date)
}

// SchedulerService implements the appointment workflow: one query
// per selected date, create with patient-name resolution, and
// delete-by-id. Every mutation invalidates the whole appointments
// family, so all cached dates refetch, not just the mutated one.
type SchedulerService struct {
	gateway providers.DataGateway
	cache   *query.Cache
	roster  *RosterService
}

// NewSchedulerService creates a scheduler service.
func NewSchedulerService(gateway providers.DataGateway, cache *query.Cache, roster *RosterService) *SchedulerService {
	return &SchedulerService{gateway: gateway, cache: cache, roster: roster}
}

// ListByDate returns all appointments whose date equals the selected
// date, by exact string match on the ISO form. A day without
// appointments is an empty list, not an error. An empty date issues
// no query at all.
func (s *SchedulerService) ListByDate(ctx context.Context, date string) ([]entities.Appointment, error) {
	if date == "" {
		return nil, apperrors.NewValidationError("date is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.NewValidationError("date must be an ISO 8601 calendar date")
	}

	data, err := s.cache.Fetch(ctx, appointmentsDateKey(date), appointmentsByDateTTL, func(ctx context.Context) ([]byte, error) {
		return s.gateway.Query(ctx, "appointments", []providers.Filter{providers.Eq("date", date)}, nil)
	})
	if err != nil {
		return nil, err
	}

	var appointments []entities.Appointment
	if err := json.Unmarshal(data, &appointments); err != nil {
		return nil, apperrors.NewExternalError("malformed appointments response", err)
	}
	if appointments == nil {
		appointments = []entities.Appointment{}
	}
	return appointments, nil
}

// Create schedules an appointment for an existing patient. The
// patient's name is resolved from a fresh roster fetch and stored
// denormalized on the row; an id that resolves to no patient fails
// before any write reaches the gateway. The submitted date may
// differ from the date the scheduler is currently showing.
func (s *SchedulerService) Create(ctx context.Context, patientID int64, date, timeOfDay string) (*entities.Appointment, error) {
	if patientID <= 0 {
		return nil, apperrors.NewValidationError("patient is required")
	}
	if date == "" {
		return nil, apperrors.NewValidationError("date is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.NewValidationError("date must be an ISO 8601 calendar date")
	}
	if strings.TrimSpace(timeOfDay) == "" {
		return nil, apperrors.NewValidationError("time is required")
	}

	patients, err := s.roster.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var patientName string
	for _, p := range patients {
		if p.ID == patientID {
			patientName = p.Name
			break
		}
	}
	if patientName == "" {
		return nil, apperrors.NewValidationError("patient not found")
	}

	row := entities.Appointment{
		PatientID:   patientID,
		PatientName: patientName,
		Date:        date,
		Time:        timeOfDay,
	}
	inserted, err := s.gateway.Insert(ctx, "appointments", row)
	if err != nil {
		return nil, err
	}

	var rows []entities.Appointment
	if err := json.Unmarshal(inserted, &rows); err != nil || len(rows) == 0 {
		return nil, apperrors.NewExternalError("malformed insert response", err)
	}

	s.cache.InvalidateFamily(ctx, query.FamilyAppointments, "appointment created")
	return &rows[0], nil
}

// Delete removes an appointment by id and invalidates the family.
// The caller's list refreshes on its next fetch; nothing is updated
// optimistically.
func (s *SchedulerService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("appointment id is required")
	}

	if err := s.gateway.Delete(ctx, "appointments", id); err != nil {
		return err
	}

	s.cache.InvalidateFamily(ctx, query.FamilyAppointments, "appointment deleted")
	return nil
}
