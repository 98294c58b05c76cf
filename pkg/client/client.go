// Package client is a small HTTP client for the task API: submit typed
// work, poll status, and wait for a terminal state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hamza276/Document-Intellegent-System/internal/task"
)

// ErrNotFound is returned when the server does not know the task ID
var ErrNotFound = errors.New("task not found")

// Config holds client configuration
type Config struct {
	BaseURL      string
	Timeout      time.Duration // per-request timeout
	PollInterval time.Duration // status poll cadence for Wait
}

// Client talks to the task API
type Client struct {
	baseURL string
	http    *http.Client
	poll    time.Duration
}

// New creates a new client instance
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		poll:    cfg.PollInterval,
	}, nil
}

// Submit submits a typed unit of work and returns its task ID
func (c *Client) Submit(ctx context.Context, taskType string, payload interface{}) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"type":    taskType,
		"payload": payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/tasks", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("submit rejected: %s", readError(resp))
	}

	var out struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	return out.TaskID, nil
}

// Status retrieves the current record for a task ID
func (c *Client) Status(ctx context.Context, taskID string) (*task.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status rejected: %s", readError(resp))
	}

	var rec task.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &rec, nil
}

// Wait polls until the task reaches a terminal state or ctx expires.
// The server enforces no deadline of its own; callers bound the wait
// through ctx.
func (c *Client) Wait(ctx context.Context, taskID string) (*task.Record, error) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		rec, err := c.Status(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if rec.Status.Terminal() {
			return rec, nil
		}

		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-ticker.C:
		}
	}
}

// readError extracts the error message from an API error response
func readError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	var out struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &out) == nil && out.Error != "" {
		return out.Error
	}
	return string(data)
}
