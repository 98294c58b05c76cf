package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/hamza276/Document-Intellegent-System/internal/logger"
)

// Open selects the task store backend. An empty redisURL selects the
// process-local store. When a shared store is configured but the ping
// at construction fails, Open falls back to the process-local store for
// the remainder of the process's lifetime; the degraded mode is visible
// only in logs and health reporting, never to store callers.
func Open(ctx context.Context, redisURL string, log *logger.Logger) Store {
	if redisURL == "" {
		log.Info("using in-memory task store")
		return NewMemoryStore()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("invalid redis URL, falling back to in-memory task store", logger.Fields{
			"error": err,
		})
		return NewMemoryStore()
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, falling back to in-memory task store", logger.Fields{
			"addr":  opts.Addr,
			"error": err,
		})
		_ = client.Close()
		return NewMemoryStore()
	}

	log.Info("using redis task store", logger.Fields{
		"addr": opts.Addr,
	})
	return NewRedisStore(client)
}
