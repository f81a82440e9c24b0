package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/observability"
	"golang.org/x/sync/singleflight"
)

// Key families used by the dashboard workflows. Every date-scoped
// appointment query shares the appointments family, so one mutation
// invalidates every cached date at once.
const (
	FamilyAppointments = "appointments"
	FamilyPatients     = "patients"
)

// FetchFunc loads fresh data for a cache key from the gateway.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Cache is the keyed read-through query cache the dashboard views
// fetch through. Concurrent fetches of the same key collapse to one
// in-flight gateway call; results are cached with a TTL; mutations
// invalidate whole key families. Errors are returned to the caller
// and never cached.
//
// There is no ordering guarantee between an invalidation and a fetch
// already in flight: the last response to resolve wins, and a stale
// result can be cached until the family's TTL expires or the next
// invalidation lands.
type Cache struct {
	provider providers.CacheProvider
	bus      providers.EventBus
	metrics  *observability.Metrics
	group    singleflight.Group
}

// NewCache creates a query cache. bus and metrics may be nil.
func NewCache(provider providers.CacheProvider, bus providers.EventBus, metrics *observability.Metrics) *Cache {
	return &Cache{
		provider: provider,
		bus:      bus,
		metrics:  metrics,
	}
}

// Fetch returns the cached value for key, or runs fn, caches the
// result for ttlSeconds and returns it.
func (c *Cache) Fetch(ctx context.Context, key string, ttlSeconds int, fn FetchFunc) ([]byte, error) {
	if cached, err := c.provider.Get(ctx, key); err == nil {
		if c.metrics != nil {
			observability.RecordCacheHit(ctx, c.metrics, key)
		}
		return cached, nil
	}

	if c.metrics != nil {
		observability.RecordCacheMiss(ctx, c.metrics, key)
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have populated the key while
		// this call waited on the flight group.
		if cached, err := c.provider.Get(ctx, key); err == nil {
			return cached, nil
		}

		data, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		if err := c.provider.Set(ctx, key, data, ttlSeconds); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache query result")
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// InvalidateFamily drops every cached key of the family locally and
// announces the invalidation on the bus so other instances do the
// same. Consumers refetch on their next read; nothing is pushed.
func (c *Cache) InvalidateFamily(ctx context.Context, family, reason string) {
	if err := c.provider.DeletePattern(ctx, family+":*"); err != nil {
		log.Warn().Err(err).Str("family", family).Msg("failed to invalidate cache family")
	}

	if c.bus == nil {
		return
	}
	event := &entities.InvalidationEvent{
		ID:         uuid.NewString(),
		Family:     family,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
	if err := c.bus.Publish(ctx, providers.EventChannelCacheInvalidation, event); err != nil {
		log.Warn().Err(err).Str("family", family).Msg("failed to publish invalidation event")
	}
}
