package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

// ConsultationService tracks which video room each clinician has
// joined. No media flows through the server; the room is a label the
// dashboard renders a placeholder for until a real video provider is
// wired in. State is per session and lives in process memory, so a
// restart empties every room.
type ConsultationService struct {
	mu    sync.RWMutex
	rooms map[string]entities.ConsultationRoom
}

// NewConsultationService creates a consultation service.
func NewConsultationService() *ConsultationService {
	return &ConsultationService{rooms: make(map[string]entities.ConsultationRoom)}
}

// Join places the session in a room. Joining while already in a room
// replaces the previous room; there is no nesting.
func (s *ConsultationService) Join(ctx context.Context, sessionToken, roomID string) (*entities.ConsultationRoom, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, apperrors.NewValidationError("room id is required")
	}

	room := entities.ConsultationRoom{RoomID: roomID, JoinedAt: time.Now()}
	s.mu.Lock()
	s.rooms[sessionToken] = room
	s.mu.Unlock()
	return &room, nil
}

// Leave removes the session from its room. Leaving without being in
// a room is a no-op.
func (s *ConsultationService) Leave(ctx context.Context, sessionToken string) error {
	s.mu.Lock()
	delete(s.rooms, sessionToken)
	s.mu.Unlock()
	return nil
}

// Current returns the room the session is in, or nil when it is not
// in one.
func (s *ConsultationService) Current(ctx context.Context, sessionToken string) (*entities.ConsultationRoom, error) {
	s.mu.RLock()
	room, ok := s.rooms[sessionToken]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return &room, nil
}

// Drop clears consultation state for a session, called on logout so
// a later login starts outside any room.
func (s *ConsultationService) Drop(sessionToken string) {
	s.mu.Lock()
	delete(s.rooms, sessionToken)
	s.mu.Unlock()
}
