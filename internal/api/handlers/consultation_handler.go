package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/telecare/clinic-dashboard/backend/internal/api/middleware"
	"github.com/telecare/clinic-dashboard/backend/internal/application/services"
)

// ConsultationHandler handles video consultation room requests
type ConsultationHandler struct {
	consultations *services.ConsultationService
}

// NewConsultationHandler creates a new consultation handler
func NewConsultationHandler(consultations *services.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations}
}

// GetRoom handles GET /api/consultation/room
func (h *ConsultationHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room, err := h.consultations.Current(r.Context(), session.Token)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if room == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"in_room": false})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"in_room": true,
		"room":    room,
	})
}

type joinRoomRequest struct {
	RoomID string `json:"room_id"`
}

// JoinRoom handles POST /api/consultation/room
func (h *ConsultationHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.consultations.Join(r.Context(), session.Token, req.RoomID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, room)
}

// LeaveRoom handles DELETE /api/consultation/room
func (h *ConsultationHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.consultations.Leave(r.Context(), session.Token); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "left"})
}
