package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/telecare/clinic-dashboard/backend/internal/application/services"
	"github.com/telecare/clinic-dashboard/backend/pkg/config"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

// SessionHandler handles login, logout and the initial session check
type SessionHandler struct {
	sessions      *services.SessionService
	consultations *services.ConsultationService
	cookie        config.SessionConfig
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionService, consultations *services.ConsultationService, cookie config.SessionConfig) *SessionHandler {
	return &SessionHandler{
		sessions:      sessions,
		consultations: consultations,
		cookie:        cookie,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, session.ExpiresAt))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user":       session.User,
		"expires_at": session.ExpiresAt,
	})
}

// Logout handles DELETE /api/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.tokenFromRequest(r)
	if token == "" {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
		return
	}

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		respondWithAppError(w, err)
		return
	}

	h.consultations.Drop(token)
	http.SetCookie(w, h.expiredCookie())
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Check handles GET /api/session. It re-validates the session at the
// gateway; the dashboard calls it once on initial load.
func (h *SessionHandler) Check(w http.ResponseWriter, r *http.Request) {
	token := h.tokenFromRequest(r)

	user, err := h.sessions.CheckSession(r.Context(), token)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if user == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          user,
	})
}

func (h *SessionHandler) tokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(h.cookie.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *SessionHandler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *SessionHandler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeUnauthorized:
		respondWithError(w, http.StatusUnauthorized, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeConflict:
		respondWithError(w, http.StatusConflict, appErr.Message)
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
