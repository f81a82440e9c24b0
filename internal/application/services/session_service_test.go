package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecare/clinic-dashboard/backend/internal/adapters/gateway"
	"github.com/telecare/clinic-dashboard/backend/internal/adapters/sessions"
	"github.com/telecare/clinic-dashboard/backend/internal/application/services"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

func newSessionService(t *testing.T) (*services.SessionService, *gateway.MockAdapter) {
	t.Helper()
	mock := gateway.NewMockAdapter()
	mock.RegisterUser("doctor@clinic.local", "secret")
	return services.NewSessionService(mock, sessions.NewMemoryStore(), time.Hour), mock
}

func TestSessionService_LoginSuccess(t *testing.T) {
	svc, _ := newSessionService(t)

	session, err := svc.Login(context.Background(), "doctor@clinic.local", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "doctor@clinic.local", session.User.Email)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestSessionService_LoginRejected(t *testing.T) {
	svc, _ := newSessionService(t)

	_, err := svc.Login(context.Background(), "doctor@clinic.local", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.TypeOf(err))

	_, err = svc.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestSessionService_ResolveAndCheck(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "doctor@clinic.local", "secret")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, session.Token, resolved.Token)

	user, err := svc.CheckSession(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "doctor@clinic.local", user.Email)

	// Unknown tokens resolve to an unauthenticated state, not an error.
	resolved, err = svc.Resolve(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, resolved)

	user, err = svc.CheckSession(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionService_Logout(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "doctor@clinic.local", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))

	resolved, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// Logging out an already-dead session is a no-op.
	require.NoError(t, svc.Logout(ctx, session.Token))
}

// flakyAuthGateway signs in normally, fails SignOut, and reports the
// remote session state through GetCurrentUser.
type flakyAuthGateway struct {
	remoteAlive bool
}

func (g *flakyAuthGateway) SignInWithPassword(ctx context.Context, email, password string) (*entities.User, string, error) {
	return &entities.User{ID: "u1", Email: email}, "token-1", nil
}

func (g *flakyAuthGateway) SignOut(ctx context.Context, accessToken string) error {
	return errors.New("network timeout")
}

func (g *flakyAuthGateway) GetCurrentUser(ctx context.Context, accessToken string) (*entities.User, error) {
	if g.remoteAlive {
		return &entities.User{ID: "u1", Email: "doctor@clinic.local"}, nil
	}
	return nil, nil
}

func TestSessionService_LogoutReconcilesFailedSignOut(t *testing.T) {
	ctx := context.Background()

	// Sign-out failed but the remote session is actually gone: the
	// local session is dropped and logout succeeds.
	gw := &flakyAuthGateway{remoteAlive: false}
	svc := services.NewSessionService(gw, sessions.NewMemoryStore(), time.Hour)
	session, err := svc.Login(ctx, "doctor@clinic.local", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))
	resolved, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// Sign-out failed and the remote session is still live: the local
	// session is kept so the states do not diverge.
	gw = &flakyAuthGateway{remoteAlive: true}
	svc = services.NewSessionService(gw, sessions.NewMemoryStore(), time.Hour)
	session, err = svc.Login(ctx, "doctor@clinic.local", "secret")
	require.NoError(t, err)

	err = svc.Logout(ctx, session.Token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))

	resolved, err = svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.NotNil(t, resolved)
}

func TestSessionService_CheckSessionDropsRevokedToken(t *testing.T) {
	svc, mock := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "doctor@clinic.local", "secret")
	require.NoError(t, err)

	// Revoke the gateway token behind the session's back.
	require.NoError(t, mock.SignOut(ctx, sessionGatewayToken(t, svc, ctx, session.Token)))

	user, err := svc.CheckSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, user)

	// The dead session was dropped locally too.
	resolved, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func sessionGatewayToken(t *testing.T, svc *services.SessionService, ctx context.Context, token string) string {
	t.Helper()
	session, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, session)
	return session.GatewayToken
}
