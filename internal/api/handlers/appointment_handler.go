package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/telecare/clinic-dashboard/backend/internal/application/services"
)

// AppointmentHandler handles appointment scheduling HTTP requests
type AppointmentHandler struct {
	scheduler *services.SchedulerService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(scheduler *services.SchedulerService) *AppointmentHandler {
	return &AppointmentHandler{scheduler: scheduler}
}

// ListAppointments handles GET /api/appointments?date=YYYY-MM-DD
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.scheduler.ListByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

type createAppointmentRequest struct {
	PatientID int64  `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// CreateAppointment handles POST /api/appointments
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appointment, err := h.scheduler.Create(r.Context(), req.PatientID, req.Date, req.Time)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"appointment": appointment,
		"message":     "Appointment added successfully",
	})
}

// DeleteAppointment handles DELETE /api/appointments/{id}
func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "appointment id must be numeric")
		return
	}

	if err := h.scheduler.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Appointment deleted"})
}
