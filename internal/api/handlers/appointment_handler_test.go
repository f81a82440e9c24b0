package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecare/clinic-dashboard/backend/internal/api/handlers"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
)

func seedPatient(t *testing.T, stack *testStack, name string) *entities.Patient {
	t.Helper()
	patient, err := stack.roster.Create(context.Background(), name, name+"@example.com", "+254700000000")
	require.NoError(t, err)
	return patient
}

func TestAppointmentHandler_CreateAndList(t *testing.T) {
	stack := newTestStack(t)
	handler := handlers.NewAppointmentHandler(stack.scheduler)
	alice := seedPatient(t, stack, "Alice")

	body := fmt.Sprintf(`{"patient_id":%d,"date":"2024-06-01","time":"10:00"}`, alice.ID)
	req := httptest.NewRequest("POST", "/api/appointments", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.CreateAppointment(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp struct {
		Appointment entities.Appointment `json:"appointment"`
		Message     string               `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&createResp))
	created := createResp.Appointment
	assert.Equal(t, "Alice", created.PatientName)
	assert.Equal(t, "Appointment added successfully", createResp.Message)

	req = httptest.NewRequest("GET", "/api/appointments?date=2024-06-01", nil)
	w = httptest.NewRecorder()
	handler.ListAppointments(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Appointments []entities.Appointment `json:"appointments"`
		Count        int                    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Appointments, 1)
	assert.Equal(t, created.ID, response.Appointments[0].ID)
}

func TestAppointmentHandler_ListRequiresDate(t *testing.T) {
	stack := newTestStack(t)
	handler := handlers.NewAppointmentHandler(stack.scheduler)

	w := httptest.NewRecorder()
	handler.ListAppointments(w, httptest.NewRequest("GET", "/api/appointments", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppointmentHandler_CreateUnknownPatient(t *testing.T) {
	stack := newTestStack(t)
	handler := handlers.NewAppointmentHandler(stack.scheduler)

	body := `{"patient_id":999,"date":"2024-06-01","time":"10:00"}`
	w := httptest.NewRecorder()
	handler.CreateAppointment(w, httptest.NewRequest("POST", "/api/appointments", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "patient not found", response["error"])
}

func TestAppointmentHandler_Delete(t *testing.T) {
	stack := newTestStack(t)
	handler := handlers.NewAppointmentHandler(stack.scheduler)
	alice := seedPatient(t, stack, "Alice")

	appointment, err := stack.scheduler.Create(context.Background(), alice.ID, "2024-06-01", "10:00")
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/appointments/%d", appointment.ID), nil)
	req.SetPathValue("id", fmt.Sprintf("%d", appointment.ID))
	w := httptest.NewRecorder()
	handler.DeleteAppointment(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var deleteResp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&deleteResp))
	assert.Equal(t, "Appointment deleted", deleteResp["message"])

	appointments, err := stack.scheduler.ListByDate(context.Background(), "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, appointments)
}

func TestAppointmentHandler_DeleteRejectsNonNumericID(t *testing.T) {
	stack := newTestStack(t)
	handler := handlers.NewAppointmentHandler(stack.scheduler)

	req := httptest.NewRequest("DELETE", "/api/appointments/abc", nil)
	req.SetPathValue("id", "abc")
	w := httptest.NewRecorder()
	handler.DeleteAppointment(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
