// Package queue is the public entry point for asynchronous task
// execution: it submits units of work, returns an opaque identifier
// immediately, and exposes status lookup by that identifier. It
// composes a task store (local or shared) with a bounded worker pool.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hamza276/Document-Intellegent-System/internal/logger"
	"github.com/hamza276/Document-Intellegent-System/internal/store"
	"github.com/hamza276/Document-Intellegent-System/internal/task"
)

// DefaultWorkers is the pool size used when none is configured
const DefaultWorkers = 4

// ErrShutdown is returned by Submit after the queue has been shut down
var ErrShutdown = errors.New("task queue is shut down")

// Job is one unit of asynchronous work. The queue is agnostic to its
// semantics; it only observes the returned value or error.
type Job func(ctx context.Context) (interface{}, error)

// Config holds queue configuration
type Config struct {
	// Workers is the number of concurrent execution slots
	Workers int
}

// Queue runs submitted jobs off the request path and tracks their
// lifecycle in a store
type Queue struct {
	store store.Store
	log   *logger.Logger
	pool  *pool
}

// New creates a queue over the given store
func New(st store.Store, log *logger.Logger, cfg Config) *Queue {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}

	return &Queue{
		store: st,
		log:   log,
		pool:  newPool(cfg.Workers),
	}
}

// Start launches the execution slots
func (q *Queue) Start() {
	q.pool.start()
	q.log.Info("task queue started", logger.Fields{
		"workers": q.pool.workers,
	})
}

// Submit registers a new task and schedules job for execution. The
// pending record is visible to Status as soon as Submit returns.
// Submit never blocks on a full pool; excess work queues internally.
func (q *Queue) Submit(ctx context.Context, job Job) (string, error) {
	id := task.NewID()

	if err := q.store.Create(ctx, id); err != nil {
		return "", fmt.Errorf("failed to create task record: %w", err)
	}

	if !q.pool.schedule(func() { q.execute(id, job) }) {
		// Shutdown raced the submission; fail the record rather than
		// leaving it pending forever.
		_ = q.store.Update(ctx, id, func(r *task.Record) {
			r.MarkFailed(ErrShutdown)
		})
		return "", ErrShutdown
	}

	q.log.Info("task submitted", logger.Fields{
		"task_id": id,
	})
	return id, nil
}

// Status retrieves the current record for id, or store.ErrNotFound
func (q *Queue) Status(ctx context.Context, id string) (*task.Record, error) {
	return q.store.Get(ctx, id)
}

// Cleanup removes task records older than maxAge and returns the count.
// The queue does not schedule its own sweeps; the composing layer runs
// this on whatever schedule it owns.
func (q *Queue) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	removed, err := q.store.Cleanup(ctx, maxAge)
	if err != nil {
		return removed, fmt.Errorf("failed to clean up tasks: %w", err)
	}
	if removed > 0 {
		q.log.Info("cleaned up old tasks", logger.Fields{
			"removed": removed,
			"max_age": maxAge,
		})
	}
	return removed, nil
}

// Stats returns counts of tracked tasks by status
func (q *Queue) Stats(ctx context.Context) (store.Stats, error) {
	return q.store.Stats(ctx)
}

// Shutdown stops accepting new work and waits for in-flight and queued
// jobs to drain, or for ctx to expire
func (q *Queue) Shutdown(ctx context.Context) error {
	q.log.Info("task queue shutting down")
	return q.pool.shutdown(ctx)
}

// execute is the wrapper a worker slot runs for one task. Failures are
// fully contained: they end up in the record's error field and are
// never propagated outward.
func (q *Queue) execute(id string, job Job) {
	// Task execution outlives the submitter's request context
	ctx := context.Background()

	err := q.store.Update(ctx, id, func(r *task.Record) { r.MarkProcessing() })
	if errors.Is(err, store.ErrNotFound) {
		// Swept while waiting for a slot; the work is simply dropped
		q.log.Warn("task record gone before execution", logger.Fields{
			"task_id": id,
		})
		return
	}
	if err != nil {
		q.log.Error("failed to mark task processing", logger.Fields{
			"task_id": id,
			"error":   err,
		})
	}

	result, jobErr := q.run(ctx, job)
	if jobErr == nil {
		var encoded json.RawMessage
		encoded, jobErr = json.Marshal(result)
		if jobErr == nil {
			q.finish(ctx, id, func(r *task.Record) { r.MarkCompleted(encoded) })
			q.log.Info("task completed", logger.Fields{
				"task_id": id,
			})
			return
		}
		jobErr = fmt.Errorf("failed to marshal task result: %w", jobErr)
	}

	q.finish(ctx, id, func(r *task.Record) { r.MarkFailed(jobErr) })
	q.log.Error("task failed", logger.Fields{
		"task_id": id,
		"error":   jobErr,
	})
}

// run invokes the job, containing panics as ordinary failures
func (q *Queue) run(ctx context.Context, job Job) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return job(ctx)
}

// finish applies a terminal transition, tolerating a concurrent sweep
func (q *Queue) finish(ctx context.Context, id string, mutate store.Mutator) {
	err := q.store.Update(ctx, id, mutate)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		q.log.Error("failed to record task outcome", logger.Fields{
			"task_id": id,
			"error":   err,
		})
	}
}
