package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecare/clinic-dashboard/backend/internal/application/services"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
)

func TestConsultationService_JoinLeaveCurrent(t *testing.T) {
	svc := services.NewConsultationService()
	ctx := context.Background()

	room, err := svc.Current(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, room)

	joined, err := svc.Join(ctx, "session-1", "room-a")
	require.NoError(t, err)
	assert.Equal(t, "room-a", joined.RoomID)
	assert.False(t, joined.JoinedAt.IsZero())

	room, err = svc.Current(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "room-a", room.RoomID)

	require.NoError(t, svc.Leave(ctx, "session-1"))

	room, err = svc.Current(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, room)

	// Leaving again is a no-op.
	require.NoError(t, svc.Leave(ctx, "session-1"))
}

func TestConsultationService_JoinReplacesCurrentRoom(t *testing.T) {
	svc := services.NewConsultationService()
	ctx := context.Background()

	_, err := svc.Join(ctx, "session-1", "room-a")
	require.NoError(t, err)
	_, err = svc.Join(ctx, "session-1", "room-b")
	require.NoError(t, err)

	room, err := svc.Current(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "room-b", room.RoomID)
}

func TestConsultationService_JoinValidation(t *testing.T) {
	svc := services.NewConsultationService()

	_, err := svc.Join(context.Background(), "session-1", "  ")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestConsultationService_RoomsAreSessionScoped(t *testing.T) {
	svc := services.NewConsultationService()
	ctx := context.Background()

	_, err := svc.Join(ctx, "session-1", "room-a")
	require.NoError(t, err)

	room, err := svc.Current(ctx, "session-2")
	require.NoError(t, err)
	assert.Nil(t, room)

	svc.Drop("session-1")
	room, err = svc.Current(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, room)
}
