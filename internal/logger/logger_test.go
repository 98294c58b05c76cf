package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

// TestTextFormat verifies the text line layout
func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "text", "store")
	log.SetOutput(&buf)

	log.Info("task submitted", Fields{"task_id": "abc"})

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Errorf("Expected level in output: %q", line)
	}
	if !strings.Contains(line, "[store]") {
		t.Errorf("Expected component in output: %q", line)
	}
	if !strings.Contains(line, "task submitted") {
		t.Errorf("Expected message in output: %q", line)
	}
	if !strings.Contains(line, "task_id=abc") {
		t.Errorf("Expected field in output: %q", line)
	}
}

// TestJSONFormat verifies entries are valid single-line JSON
func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", "queue")
	log.SetOutput(&buf)

	log.Warn("redis unavailable", Fields{
		"addr":  "localhost:6379",
		"error": errors.New("connection refused"),
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" {
		t.Errorf("Expected level WARN, got %v", entry["level"])
	}
	if entry["component"] != "queue" {
		t.Errorf("Expected component queue, got %v", entry["component"])
	}
	if entry["message"] != "redis unavailable" {
		t.Errorf("Unexpected message: %v", entry["message"])
	}
	if entry["error"] != "connection refused" {
		t.Errorf("Expected error rendered as string, got %v", entry["error"])
	}
}

// TestLevelFiltering verifies messages below the configured level are
// dropped
func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "text", "")
	log.SetOutput(&buf)

	log.Debug("noise")
	log.Info("more noise")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below warn, got %q", buf.String())
	}

	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("Expected warn output, got %q", buf.String())
	}
}

// TestWithComponent verifies component scoping does not affect the
// parent logger
func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "text", "parent")
	log.SetOutput(&buf)

	child := log.WithComponent("child")
	child.SetOutput(&buf)
	child.Info("from child")

	if !strings.Contains(buf.String(), "[child]") {
		t.Errorf("Expected child component, got %q", buf.String())
	}

	buf.Reset()
	log.Info("from parent")
	if !strings.Contains(buf.String(), "[parent]") {
		t.Errorf("Expected parent component, got %q", buf.String())
	}
}

// TestWithComponentConcurrentSetOutput verifies deriving loggers is
// safe while the output writer is being swapped
func TestWithComponentConcurrentSetOutput(t *testing.T) {
	log := New("info", "text", "parent")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			log.SetOutput(&buf)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := log.WithComponent("child")
			child.SetOutput(io.Discard)
			child.Info("derived")
		}()
	}
	wg.Wait()
}

// TestParseLevelDefaults verifies unknown level strings fall back to INFO
func TestParseLevelDefaults(t *testing.T) {
	if parseLevel("loud") != INFO {
		t.Error("Expected unknown level to parse as INFO")
	}
	if parseLevel("WARNING") != WARN {
		t.Error("Expected WARNING to parse as WARN")
	}
	if parseLevel("debug") != DEBUG {
		t.Error("Expected lowercase debug to parse as DEBUG")
	}
}
