package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hamza276/Document-Intellegent-System/internal/task"
)

// MemoryStore keeps task records in process memory behind a single
// mutex. It grows without bound unless Cleanup runs periodically.
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]*task.Record
}

// NewMemoryStore creates an empty in-memory task store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*task.Record),
	}
}

// Create writes the initial pending record for id
func (ms *MemoryStore) Create(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[id]; exists {
		return fmt.Errorf("task %s already exists", id)
	}

	ms.tasks[id] = task.NewRecord(id)
	return nil
}

// Update atomically applies mutate to the record for id
func (ms *MemoryStore) Update(ctx context.Context, id string, mutate Mutator) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec, exists := ms.tasks[id]
	if !exists {
		return ErrNotFound
	}

	mutate(rec)
	return nil
}

// Get retrieves a copy of the record for id
func (ms *MemoryStore) Get(ctx context.Context, id string) (*task.Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec, exists := ms.tasks[id]
	if !exists {
		return nil, ErrNotFound
	}

	return rec.Clone(), nil
}

// Cleanup removes every record older than maxAge and returns the count
func (ms *MemoryStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	now := time.Now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for id, rec := range ms.tasks {
		if now.Sub(rec.CreatedAt) > maxAge {
			delete(ms.tasks, id)
			removed++
		}
	}
	return removed, nil
}

// Stats returns counts of tracked tasks by status
func (ms *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var stats Stats
	for _, rec := range ms.tasks {
		stats.Total++
		switch rec.Status {
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
	return stats, nil
}

// Close is a no-op for the in-memory store
func (ms *MemoryStore) Close() error {
	return nil
}
