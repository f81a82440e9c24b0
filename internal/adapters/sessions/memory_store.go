package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/repositories"
)

// MemoryStore keeps sessions in process memory for deployments
// without Redis. Expired sessions are dropped lazily on access.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entities.Session
}

// NewMemoryStore creates an in-memory session repository.
func NewMemoryStore() repositories.SessionRepository {
	return &MemoryStore{sessions: make(map[string]entities.Session)}
}

// Save stores the session.
func (s *MemoryStore) Save(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	s.sessions[session.Token] = *session
	s.mu.Unlock()
	return nil
}

// Get resolves a token; nil session without error when unknown or
// expired.
func (s *MemoryStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if session.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, nil
	}
	return &session, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
