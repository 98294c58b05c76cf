package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hamza276/Document-Intellegent-System/internal/task"
)

// Redis key prefix for task records. Each record is a hash with one
// field per record attribute, numbers encoded as text.
const taskKeyPrefix = "task:"

// scanCount is the COUNT hint used when iterating task keys
const scanCount = 100

// RedisStore persists task records in Redis so multiple processes can
// observe the same lifecycle state. It does no cross-process locking:
// within this system only the single worker that owns a task ever
// transitions it, so last-write-wins per field is acceptable.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed task store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

// Create writes the initial pending record for id
func (rs *RedisStore) Create(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	return rs.write(ctx, task.NewRecord(id))
}

// Update atomically applies mutate to the record for id. Atomicity here
// is read-modify-write against the single owning worker; concurrent
// readers only ever observe fully written field sets.
func (rs *RedisStore) Update(ctx context.Context, id string, mutate Mutator) error {
	rec, err := rs.Get(ctx, id)
	if err != nil {
		return err
	}

	mutate(rec)
	return rs.write(ctx, rec)
}

// Get retrieves a record by id, or ErrNotFound
func (rs *RedisStore) Get(ctx context.Context, id string) (*task.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	data, err := rs.client.HGetAll(ctx, taskKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	return decodeRecord(data)
}

// Cleanup removes every record older than maxAge and returns the count
func (rs *RedisStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	now := time.Now()
	removed := 0

	iter := rs.client.Scan(ctx, 0, taskKeyPrefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		raw, err := rs.client.HGet(ctx, key, "created_at").Result()
		if err == redis.Nil {
			continue // swept by a concurrent cleanup
		}
		if err != nil {
			return removed, fmt.Errorf("failed to read task age: %w", err)
		}

		createdAt, err := parseTime(raw)
		if err != nil {
			return removed, fmt.Errorf("corrupt created_at for %s: %w", key, err)
		}

		if now.Sub(createdAt) > maxAge {
			if err := rs.client.Del(ctx, key).Err(); err != nil {
				return removed, fmt.Errorf("failed to delete task: %w", err)
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan tasks: %w", err)
	}

	return removed, nil
}

// Stats returns counts of tracked tasks by status
func (rs *RedisStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	iter := rs.client.Scan(ctx, 0, taskKeyPrefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		status, err := rs.client.HGet(ctx, iter.Val(), "status").Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read task status: %w", err)
		}

		stats.Total++
		switch task.Status(status) {
		case task.StatusPending:
			stats.Pending++
		case task.StatusProcessing:
			stats.Processing++
		case task.StatusCompleted:
			stats.Completed++
		case task.StatusFailed:
			stats.Failed++
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan tasks: %w", err)
	}

	return stats, nil
}

// Close closes the underlying Redis client
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// write stores all fields of rec in its hash. Absent result/error
// fields are deleted so a record never carries both.
func (rs *RedisStore) write(ctx context.Context, rec *task.Record) error {
	key := taskKeyPrefix + rec.ID

	fields := map[string]interface{}{
		"id":         rec.ID,
		"status":     string(rec.Status),
		"created_at": formatTime(rec.CreatedAt),
		"updated_at": formatTime(rec.UpdatedAt),
	}
	if rec.Result != nil {
		fields["result"] = string(rec.Result)
	}
	if rec.Error != "" {
		fields["error"] = rec.Error
	}

	if err := rs.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// decodeRecord rebuilds a record from its hash fields
func decodeRecord(data map[string]string) (*task.Record, error) {
	rec := &task.Record{
		ID:     data["id"],
		Status: task.Status(data["status"]),
		Error:  data["error"],
	}

	if raw, ok := data["result"]; ok && raw != "" {
		rec.Result = []byte(raw)
	}

	var err error
	if rec.CreatedAt, err = parseTime(data["created_at"]); err != nil {
		return nil, fmt.Errorf("corrupt created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(data["updated_at"]); err != nil {
		return nil, fmt.Errorf("corrupt updated_at: %w", err)
	}

	return rec, nil
}

// formatTime encodes a timestamp as unix nanoseconds in text
func formatTime(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

// parseTime decodes a unix-nanosecond text timestamp
func parseTime(raw string) (time.Time, error) {
	ns, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ns).UTC(), nil
}
