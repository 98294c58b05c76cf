package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process TTL cache
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key if it has not expired. Expired
// entries are removed lazily on lookup.
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, exists := mc.entries[key]
	if !exists {
		return nil, false, nil
	}
	if !time.Now().Before(e.expires) {
		delete(mc.entries, key)
		return nil, false, nil
	}

	value := append([]byte(nil), e.value...)
	return value, true, nil
}

// Set stores value under key for ttl
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries[key] = entry{
		value:   append([]byte(nil), value...),
		expires: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes key from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	delete(mc.entries, key)
	return nil
}

// Clear removes all entries
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries = make(map[string]entry)
	return nil
}

// Close is a no-op for the in-memory cache
func (mc *MemoryCache) Close() error {
	return nil
}
