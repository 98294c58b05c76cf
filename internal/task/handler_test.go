package task

import (
	"context"
	"encoding/json"
	"testing"
)

// TestRegistryRegisterAndGet verifies basic handler registration
func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	handler := func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		return "ok", nil
	}

	if err := registry.Register("ingest", handler); err != nil {
		t.Fatalf("Failed to register handler: %v", err)
	}

	got, err := registry.Get("ingest")
	if err != nil {
		t.Fatalf("Failed to get handler: %v", err)
	}

	result, err := got(context.Background(), nil)
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected 'ok', got %v", result)
	}
}

// TestRegistryDuplicateRegistration verifies that a task type cannot be
// registered twice
func TestRegistryDuplicateRegistration(t *testing.T) {
	registry := NewRegistry()

	handler := func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		return nil, nil
	}

	if err := registry.Register("ingest", handler); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	if err := registry.Register("ingest", handler); err == nil {
		t.Error("Expected error on duplicate registration")
	}
}

// TestRegistryGetUnknownType verifies lookup of an unregistered type
func TestRegistryGetUnknownType(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Get("nope"); err == nil {
		t.Error("Expected error for unknown task type")
	}
}

// TestRegistryTypes verifies listing of registered types
func TestRegistryTypes(t *testing.T) {
	registry := NewRegistry()

	handler := func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		return nil, nil
	}

	for _, taskType := range []string{"query", "ingest"} {
		if err := registry.Register(taskType, handler); err != nil {
			t.Fatalf("Failed to register %s: %v", taskType, err)
		}
	}

	types := registry.Types()
	if len(types) != 2 {
		t.Fatalf("Expected 2 types, got %d", len(types))
	}
	if types[0] != "ingest" || types[1] != "query" {
		t.Errorf("Expected sorted [ingest query], got %v", types)
	}
}
