package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecare/clinic-dashboard/backend/internal/api/middleware"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
)

type stubResolver struct {
	sessions map[string]*entities.Session
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (*entities.Session, error) {
	return s.sessions[token], nil
}

func TestSessionGate_RejectsWithoutSession(t *testing.T) {
	gate := middleware.SessionGate(&stubResolver{sessions: map[string]*entities.Session{}}, "clinic_session")
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session")
	}))

	// No cookie at all.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Cookie carrying a dead token.
	req := httptest.NewRequest("GET", "/api/patients", nil)
	req.AddCookie(&http.Cookie{Name: "clinic_session", Value: "dead-token"})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionGate_PassesLiveSessionToHandler(t *testing.T) {
	session := &entities.Session{
		Token:     "live-token",
		User:      entities.User{ID: "u1", Email: "doctor@clinic.local"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	resolver := &stubResolver{sessions: map[string]*entities.Session{"live-token": session}}

	gate := middleware.SessionGate(resolver, "clinic_session")
	var seen *entities.Session
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/patients", nil)
	req.AddCookie(&http.Cookie{Name: "clinic_session", Value: "live-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "live-token", seen.Token)
	assert.Equal(t, "doctor@clinic.local", seen.User.Email)
}

func TestSessionFromContext_NilOutsideGate(t *testing.T) {
	assert.Nil(t, middleware.SessionFromContext(context.Background()))
}
