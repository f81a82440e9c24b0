package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/repositories"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

// SessionService owns the authenticated-user state that gates every
// dashboard view. It is an explicit handle wired through the router,
// never package-level state.
type SessionService struct {
	gateway    providers.AuthGateway
	sessions   repositories.SessionRepository
	defaultTTL time.Duration
}

// NewSessionService creates a session service.
func NewSessionService(gateway providers.AuthGateway, sessions repositories.SessionRepository, defaultTTL time.Duration) *SessionService {
	return &SessionService{
		gateway:    gateway,
		sessions:   sessions,
		defaultTTL: defaultTTL,
	}
}

// Login signs the clinician in at the gateway and creates a
// server-side session. On gateway rejection no session exists and
// the error carries the message the login form displays.
func (s *SessionService) Login(ctx context.Context, email, password string) (*entities.Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	user, accessToken, err := s.gateway.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entities.Session{
		Token:        uuid.NewString(),
		User:         *user,
		GatewayToken: accessToken,
		CreatedAt:    now,
		ExpiresAt:    s.expiryFromToken(accessToken, now),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.NewInternalError("failed to persist session", err)
	}
	return session, nil
}

// Logout signs out at the gateway and drops the local session. When
// the gateway call fails the remote state is reconciled with a
// follow-up user lookup instead of trusting the failed call: the
// local session is only kept if the gateway still considers the
// token signed in.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return apperrors.NewInternalError("failed to load session", err)
	}
	if session == nil {
		return nil
	}

	if signOutErr := s.gateway.SignOut(ctx, session.GatewayToken); signOutErr != nil {
		user, checkErr := s.gateway.GetCurrentUser(ctx, session.GatewayToken)
		if checkErr == nil && user == nil {
			// Remote session is gone despite the error.
			_ = s.sessions.Delete(ctx, token)
			return nil
		}
		log.Warn().Err(signOutErr).Msg("gateway sign-out failed, session kept")
		return apperrors.NewExternalError("failed to log out", signOutErr)
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return apperrors.NewInternalError("failed to delete session", err)
	}
	return nil
}

// CheckSession re-validates a session against the gateway on the
// dashboard's initial load. A nil user means unauthenticated; that
// is a state, not an error.
func (s *SessionService) CheckSession(ctx context.Context, token string) (*entities.User, error) {
	session, err := s.resolve(ctx, token)
	if err != nil || session == nil {
		return nil, err
	}

	user, err := s.gateway.GetCurrentUser(ctx, session.GatewayToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.sessions.Delete(ctx, token)
		return nil, nil
	}
	return user, nil
}

// Resolve looks up the local session for gating requests. It does
// not call the gateway; only the initial session check does.
func (s *SessionService) Resolve(ctx context.Context, token string) (*entities.Session, error) {
	return s.resolve(ctx, token)
}

func (s *SessionService) resolve(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load session", err)
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, nil
	}
	return session, nil
}

// expiryFromToken derives the session expiry from the gateway
// token's exp claim, parsed without signature verification (the
// gateway is the token's authority, this service only mirrors its
// lifetime). Tokens without a usable expiry get the configured TTL.
func (s *SessionService) expiryFromToken(accessToken string, now time.Time) time.Time {
	fallback := now.Add(s.defaultTTL)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !exp.After(now) {
		return fallback
	}
	return exp.Time
}
