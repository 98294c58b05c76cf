package task

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the current lifecycle state of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal returns true if no further transitions can occur from s
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record tracks one submitted unit of work. Exactly one of Result and
// Error is set, and only once a terminal status is reached.
type Record struct {
	ID        string          `json:"id"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewID generates a globally unique task identifier
func NewID() string {
	return uuid.New().String()
}

// NewRecord creates a pending record for the given identifier
func NewRecord(id string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkProcessing transitions the record to processing. Terminal records
// are left untouched.
func (r *Record) MarkProcessing() {
	if r.Status.Terminal() {
		return
	}
	r.Status = StatusProcessing
	r.touch()
}

// MarkCompleted transitions the record to completed with the given result
func (r *Record) MarkCompleted(result json.RawMessage) {
	if r.Status.Terminal() {
		return
	}
	r.Status = StatusCompleted
	r.Result = result
	r.touch()
}

// MarkFailed transitions the record to failed with the error's description
func (r *Record) MarkFailed(err error) {
	if r.Status.Terminal() {
		return
	}
	r.Status = StatusFailed
	r.Error = err.Error()
	r.touch()
}

// touch refreshes UpdatedAt, keeping it non-decreasing even if the
// clock steps backwards between transitions
func (r *Record) touch() {
	now := time.Now().UTC()
	if now.Before(r.UpdatedAt) {
		now = r.UpdatedAt
	}
	r.UpdatedAt = now
}

// Clone returns a copy that is safe to hand to readers while the
// original continues to be mutated under the store's lock
func (r *Record) Clone() *Record {
	c := *r
	if r.Result != nil {
		c.Result = append(json.RawMessage(nil), r.Result...)
	}
	return &c
}
