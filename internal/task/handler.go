package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Handler is a function that processes the payload for one task type
type Handler func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// Registry manages task handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates a new handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register registers a handler for a specific task type
func (r *Registry) Register(taskType string, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[taskType]; exists {
		return fmt.Errorf("handler for task type '%s' already registered", taskType)
	}

	r.handlers[taskType] = handler
	return nil
}

// Get retrieves a handler for a task type
func (r *Registry) Get(taskType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[taskType]
	if !exists {
		return nil, fmt.Errorf("no handler registered for task type '%s'", taskType)
	}

	return handler, nil
}

// Types returns all registered task types, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
