package repositories

import (
	"context"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
)

// SessionRepository persists server-side sessions between requests.
// A nil session with a nil error from Get means the token is unknown
// or expired.
type SessionRepository interface {
	Save(ctx context.Context, session *entities.Session) error
	Get(ctx context.Context, token string) (*entities.Session, error)
	Delete(ctx context.Context, token string) error
}
