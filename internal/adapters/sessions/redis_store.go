package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/repositories"
	redisclient "github.com/telecare/clinic-dashboard/backend/internal/infrastructure/clients/redis"
)

// RedisStore persists sessions in Redis so they survive restarts and
// are shared between instances. Keys expire with the session.
type RedisStore struct {
	client *redisclient.Client
}

// NewRedisStore creates a Redis-backed session repository.
func NewRedisStore(client *redisclient.Client) repositories.SessionRepository {
	return &RedisStore{client: client}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// storedSession carries the gateway token, which the entity excludes
// from JSON so it can never leak into an API response.
type storedSession struct {
	entities.Session
	GatewayToken string `json:"gateway_token"`
}

// Save stores the session until its expiry.
func (s *RedisStore) Save(ctx context.Context, session *entities.Session) error {
	data, err := json.Marshal(storedSession{Session: *session, GatewayToken: session.GatewayToken})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := s.client.Client().Set(ctx, sessionKey(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get resolves a token; nil session without error when unknown.
func (s *RedisStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	data, err := s.client.Client().Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	session := stored.Session
	session.GatewayToken = stored.GatewayToken
	return &session, nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Client().Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
