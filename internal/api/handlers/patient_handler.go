package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/telecare/clinic-dashboard/backend/internal/application/services"
)

// PatientHandler handles patient roster HTTP requests
type PatientHandler struct {
	roster *services.RosterService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(roster *services.RosterService) *PatientHandler {
	return &PatientHandler{roster: roster}
}

// ListPatients handles GET /api/patients. An optional search query
// parameter filters the roster by name substring.
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.roster.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patients": patients,
		"count":    len(patients),
	})
}

type createPatientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreatePatient handles POST /api/patients
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patient, err := h.roster.Create(r.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"patient": patient,
		"message": "Patient added successfully",
	})
}
