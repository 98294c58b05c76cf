package store

import (
	"context"
	"errors"
	"time"

	"github.com/hamza276/Document-Intellegent-System/internal/task"
)

// ErrNotFound is returned when a task identifier is unknown or its
// record has already been swept.
var ErrNotFound = errors.New("task not found")

// Mutator applies an in-place change to a record. The store guarantees
// the mutation is atomic with respect to concurrent reads and writes of
// the same identifier.
type Mutator func(*task.Record)

// Store defines the interface for persisting task lifecycle records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create writes the initial pending record for id
	Create(ctx context.Context, id string) error

	// Update atomically applies mutate to the record for id
	Update(ctx context.Context, id string, mutate Mutator) error

	// Get retrieves a record by id, or ErrNotFound
	Get(ctx context.Context, id string) (*task.Record, error)

	// Cleanup removes every record whose age exceeds maxAge, regardless
	// of status, and returns the number removed
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)

	// Stats returns counts of tracked tasks by status
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the store
	Close() error
}

// Stats holds statistics about tracked tasks
type Stats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

// Shared reports whether s is backed by the external key-value store,
// as opposed to process-local memory.
func Shared(s Store) bool {
	_, ok := s.(*RedisStore)
	return ok
}
