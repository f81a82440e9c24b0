package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecare/clinic-dashboard/backend/internal/adapters/cache"
	"github.com/telecare/clinic-dashboard/backend/internal/adapters/events"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/query"
)

func TestCache_FetchCachesResult(t *testing.T) {
	ctx := context.Background()
	c := query.NewCache(cache.NewMemoryAdapter(), nil, nil)

	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`[{"id":1}]`), nil
	}

	for i := 0; i < 3; i++ {
		data, err := c.Fetch(ctx, "appointments:date:2024-06-01", 60, fetch)
		require.NoError(t, err)
		assert.Equal(t, `[{"id":1}]`, string(data))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_ConcurrentFetchesCollapse(t *testing.T) {
	ctx := context.Background()
	c := query.NewCache(cache.NewMemoryAdapter(), nil, nil)

	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return []byte(`[]`), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := c.Fetch(ctx, "patients:list", 60, fetch)
			assert.NoError(t, err)
			assert.Equal(t, `[]`, string(data))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := query.NewCache(cache.NewMemoryAdapter(), nil, nil)

	var calls int32
	fetch := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("gateway down")
		}
		return []byte(`[]`), nil
	}

	_, err := c.Fetch(ctx, "patients:list", 60, fetch)
	require.Error(t, err)

	// The failure was not cached; the next fetch retries the gateway.
	data, err := c.Fetch(ctx, "patients:list", 60, fetch)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_InvalidateFamily(t *testing.T) {
	ctx := context.Background()
	provider := cache.NewMemoryAdapter()
	bus := events.NewMemoryEventBus()
	c := query.NewCache(provider, bus, nil)

	eventsCh, err := bus.Subscribe(ctx, providers.EventChannelCacheInvalidation)
	require.NoError(t, err)

	require.NoError(t, provider.Set(ctx, "appointments:date:2024-06-01", []byte("a"), 60))
	require.NoError(t, provider.Set(ctx, "appointments:date:2024-06-02", []byte("b"), 60))
	require.NoError(t, provider.Set(ctx, "patients:list", []byte("c"), 60))

	c.InvalidateFamily(ctx, query.FamilyAppointments, "appointment created")

	for _, key := range []string{"appointments:date:2024-06-01", "appointments:date:2024-06-02"} {
		exists, err := provider.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists, key)
	}

	exists, err := provider.Exists(ctx, "patients:list")
	require.NoError(t, err)
	assert.True(t, exists)

	select {
	case event := <-eventsCh:
		require.NotNil(t, event)
		assert.Equal(t, query.FamilyAppointments, event.Family)
		assert.Equal(t, "appointment created", event.Reason)
		assert.NotEmpty(t, event.ID)
	case <-time.After(time.Second):
		t.Fatal("expected an invalidation event on the bus")
	}
}
