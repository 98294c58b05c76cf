// Package cache provides a TTL key-value cache for idempotent results,
// with interchangeable in-memory and Redis backends.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is the capability interface for result caching. Implementations
// must be safe for concurrent use. A lookup miss is reported through
// the ok return, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Key derives a stable cache key from a prefix and arbitrary arguments
func Key(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := md5.Sum(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}
