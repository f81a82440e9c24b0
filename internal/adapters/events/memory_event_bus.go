package events

import (
	"context"
	"sync"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
)

// MemoryEventBus is an in-process EventBus for single-instance
// deployments without Redis. Delivery semantics match the Redis bus:
// buffered subscriber channels, events dropped when a subscriber
// falls behind.
type MemoryEventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.InvalidationEvent]struct{}
	closed      bool
}

// NewMemoryEventBus creates an in-process event bus.
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{
		subscribers: make(map[string]map[chan *entities.InvalidationEvent]struct{}),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.InvalidationEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	for subscriber := range b.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
			// Subscriber channel full, skip event
		}
	}
	return nil
}

// Subscribe subscribes to events on a channel
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.InvalidationEvent, error) {
	eventChan := make(chan *entities.InvalidationEvent, 100)

	b.mu.Lock()
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.InvalidationEvent]struct{})
	}
	b.subscribers[channel][eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

// Close tears down all subscriptions.
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for channel, subscribers := range b.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(b.subscribers, channel)
	}
	return nil
}

func (b *MemoryEventBus) removeSubscriber(channel string, eventChan chan *entities.InvalidationEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	subscribers, exists := b.subscribers[channel]
	if !exists {
		return
	}
	if _, ok := subscribers[eventChan]; !ok {
		return
	}

	delete(subscribers, eventChan)
	close(eventChan)

	if len(subscribers) == 0 {
		delete(b.subscribers, channel)
	}
}
