package cache

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is an in-process CacheProvider used when Redis is
// not configured. It keeps the same TTL and pattern-delete semantics
// so the query cache behaves identically in development and tests.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryAdapter creates an in-memory cache adapter.
func NewMemoryAdapter() providers.CacheProvider {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()

	if !ok || entry.expired(time.Now()) {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	entry := memoryEntry{value: stored}
	if expirationSeconds > 0 {
		entry.expiresAt = time.Now().Add(time.Duration(expirationSeconds) * time.Second)
	}

	a.mu.Lock()
	a.entries[key] = entry
	a.mu.Unlock()
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	delete(a.entries, key)
	a.mu.Unlock()
	return nil
}

// DeletePattern removes every key matching a glob pattern.
func (a *MemoryAdapter) DeletePattern(ctx context.Context, pattern string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key := range a.entries {
		if matched, _ := path.Match(pattern, key); matched {
			delete(a.entries, key)
		}
	}
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()
	return ok && !entry.expired(time.Now()), nil
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
