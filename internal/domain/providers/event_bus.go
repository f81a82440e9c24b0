package providers

import (
	"context"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
)

// EventChannelCacheInvalidation carries invalidation events emitted
// after every successful mutation.
const EventChannelCacheInvalidation = "cache:invalidations"

// EventBus broadcasts invalidation events between instances.
type EventBus interface {
	// Publish publishes an event to all subscribers of channel.
	Publish(ctx context.Context, channel string, event *entities.InvalidationEvent) error

	// Subscribe subscribes to events on a channel. The returned
	// channel is closed when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.InvalidationEvent, error)

	// Close tears down all subscriptions.
	Close() error
}
