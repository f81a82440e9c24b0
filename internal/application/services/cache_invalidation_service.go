package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
)

// CacheInvalidationService listens for invalidation events published
// by other instances and drops the named key family from the local
// cache. Together with the publish in the query cache this keeps a
// multi-instance deployment coherent without any cross-instance
// locking.
type CacheInvalidationService struct {
	bus      providers.EventBus
	provider providers.CacheProvider

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheInvalidationService creates the invalidation listener.
func NewCacheInvalidationService(bus providers.EventBus, provider providers.CacheProvider) *CacheInvalidationService {
	return &CacheInvalidationService{bus: bus, provider: provider}
}

// Start subscribes to the invalidation channel and processes events
// until Stop is called.
func (s *CacheInvalidationService) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	events, err := s.bus.Subscribe(ctx, providers.EventChannelCacheInvalidation)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for event := range events {
			s.handleEvent(ctx, event)
		}
	}()

	log.Info().Str("channel", providers.EventChannelCacheInvalidation).Msg("cache invalidation listener started")
	return nil
}

// Stop cancels the subscription and waits for the listener to drain.
func (s *CacheInvalidationService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *CacheInvalidationService) handleEvent(ctx context.Context, event *entities.InvalidationEvent) {
	if event == nil || event.Family == "" {
		return
	}

	if err := s.provider.DeletePattern(ctx, event.Family+":*"); err != nil {
		log.Warn().
			Err(err).
			Str("family", event.Family).
			Str("event_id", event.ID).
			Msg("failed to apply invalidation event")
		return
	}

	log.Debug().
		Str("family", event.Family).
		Str("reason", event.Reason).
		Msg("cache family invalidated by event")
}
