package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecare/clinic-dashboard/backend/internal/api/handlers"
	"github.com/telecare/clinic-dashboard/backend/internal/api/middleware"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
)

type fixedResolver struct {
	session *entities.Session
}

func (r *fixedResolver) Resolve(ctx context.Context, token string) (*entities.Session, error) {
	if r.session != nil && token == r.session.Token {
		return r.session, nil
	}
	return nil, nil
}

// gatedConsultation wires the consultation handler behind the session
// gate the way the router does, so the handler sees the session on
// the request context.
func gatedConsultation(stack *testStack, session *entities.Session) (http.Handler, http.Handler, http.Handler) {
	handler := handlers.NewConsultationHandler(stack.consultations)
	gate := middleware.SessionGate(&fixedResolver{session: session}, "clinic_session")
	return gate(http.HandlerFunc(handler.GetRoom)),
		gate(http.HandlerFunc(handler.JoinRoom)),
		gate(http.HandlerFunc(handler.LeaveRoom))
}

func testSession() *entities.Session {
	return &entities.Session{
		Token:     "session-token",
		User:      entities.User{ID: "u1", Email: "doctor@clinic.local"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func withSessionCookie(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "clinic_session", Value: "session-token"})
	return req
}

func TestConsultationHandler_JoinAndGetRoom(t *testing.T) {
	stack := newTestStack(t)
	getRoom, joinRoom, _ := gatedConsultation(stack, testSession())

	// Outside any room.
	w := httptest.NewRecorder()
	getRoom.ServeHTTP(w, withSessionCookie(httptest.NewRequest("GET", "/api/consultation/room", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	var state map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, false, state["in_room"])

	// Join a room.
	w = httptest.NewRecorder()
	joinRoom.ServeHTTP(w, withSessionCookie(httptest.NewRequest("POST", "/api/consultation/room",
		strings.NewReader(`{"room_id":"room-a"}`))))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	getRoom.ServeHTTP(w, withSessionCookie(httptest.NewRequest("GET", "/api/consultation/room", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	state = map[string]any{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, true, state["in_room"])
	room, ok := state["room"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "room-a", room["room_id"])
}

func TestConsultationHandler_LeaveRoom(t *testing.T) {
	stack := newTestStack(t)
	getRoom, joinRoom, leaveRoom := gatedConsultation(stack, testSession())

	w := httptest.NewRecorder()
	joinRoom.ServeHTTP(w, withSessionCookie(httptest.NewRequest("POST", "/api/consultation/room",
		strings.NewReader(`{"room_id":"room-a"}`))))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	leaveRoom.ServeHTTP(w, withSessionCookie(httptest.NewRequest("DELETE", "/api/consultation/room", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	getRoom.ServeHTTP(w, withSessionCookie(httptest.NewRequest("GET", "/api/consultation/room", nil)))
	var state map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, false, state["in_room"])
}

func TestConsultationHandler_JoinValidation(t *testing.T) {
	stack := newTestStack(t)
	_, joinRoom, _ := gatedConsultation(stack, testSession())

	w := httptest.NewRecorder()
	joinRoom.ServeHTTP(w, withSessionCookie(httptest.NewRequest("POST", "/api/consultation/room",
		strings.NewReader(`{"room_id":""}`))))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConsultationHandler_RequiresSession(t *testing.T) {
	stack := newTestStack(t)
	getRoom, _, _ := gatedConsultation(stack, nil)

	w := httptest.NewRecorder()
	getRoom.ServeHTTP(w, httptest.NewRequest("GET", "/api/consultation/room", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
