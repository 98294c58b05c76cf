package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hamza276/Document-Intellegent-System/internal/logger"
)

// RedisCache is a Redis-backed TTL cache shared across processes
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get returns the cached value for key if present
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return data, true, nil
}

// Set stores value under key for ttl
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rc.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Delete removes key from the cache
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries in the cache's database
func (rc *RedisCache) Clear(ctx context.Context) error {
	if err := rc.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Open selects the cache backend the same way the task store does: an
// empty redisURL or an unreachable Redis selects the in-memory cache.
func Open(ctx context.Context, redisURL string, log *logger.Logger) Cache {
	if redisURL == "" {
		log.Info("using in-memory cache")
		return NewMemoryCache()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("invalid redis URL, falling back to in-memory cache", logger.Fields{
			"error": err,
		})
		return NewMemoryCache()
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, falling back to in-memory cache", logger.Fields{
			"addr":  opts.Addr,
			"error": err,
		})
		_ = client.Close()
		return NewMemoryCache()
	}

	log.Info("redis cache connected", logger.Fields{
		"addr": opts.Addr,
	})
	return NewRedisCache(client)
}
