// Package server exposes the task queue over HTTP: submit typed work,
// poll status by identifier, inspect stats, and manage the result cache.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hamza276/Document-Intellegent-System/internal/cache"
	"github.com/hamza276/Document-Intellegent-System/internal/logger"
	"github.com/hamza276/Document-Intellegent-System/internal/queue"
	"github.com/hamza276/Document-Intellegent-System/internal/store"
	"github.com/hamza276/Document-Intellegent-System/internal/task"
)

// Config holds server configuration
type Config struct {
	Addr     string // e.g. ":8000"
	Queue    *queue.Queue
	Registry *task.Registry
	Cache    cache.Cache   // nil when caching is disabled
	CacheTTL time.Duration // lifetime of cached status responses
	Shared   bool          // whether the task store is the shared backend
	Logger   *logger.Logger
}

// Server provides the HTTP API over the task queue
type Server struct {
	addr     string
	queue    *queue.Queue
	registry *task.Registry
	cache    cache.Cache
	cacheTTL time.Duration
	shared   bool
	log      *logger.Logger

	serverMu sync.RWMutex
	server   *http.Server

	ready chan struct{}
}

// submitRequest is the body of POST /api/v1/tasks
type submitRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// New creates a new server instance
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Server{
		addr:     cfg.Addr,
		queue:    cfg.Queue,
		registry: cfg.Registry,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		shared:   cfg.Shared,
		log:      cfg.Logger,
		ready:    make(chan struct{}),
	}
}

// Handler builds the route tree. Exposed so tests can drive the API
// through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withLogging)
	r.Use(s.withCORS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tasks", s.handleSubmit)
		r.Get("/tasks/{taskID}", s.handleStatus)
		r.Get("/stats", s.handleStats)
		r.Delete("/cache", s.handleClearCache)
	})
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it exits
func (s *Server) Start() error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.serverMu.Lock()
	s.server = server
	s.serverMu.Unlock()

	close(s.ready)

	s.log.Info("starting HTTP server", logger.Fields{
		"address": s.addr,
	})
	return server.ListenAndServe()
}

// Ready returns a channel that is closed when the server is ready
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.serverMu.RLock()
	server := s.server
	s.serverMu.RUnlock()

	if server == nil {
		return nil
	}

	s.log.Info("shutting down HTTP server")
	return server.Shutdown(ctx)
}

// handleSubmit accepts a typed unit of work and returns its task ID.
// The pending record is visible to a status poll immediately.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("failed to decode submit request", logger.Fields{
			"error": err,
		})
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" {
		s.writeError(w, http.StatusBadRequest, "task type is required")
		return
	}

	handler, err := s.registry.Get(req.Type)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":            err.Error(),
			"registered_types": s.registry.Types(),
		})
		return
	}

	payload := req.Payload
	id, err := s.queue.Submit(r.Context(), func(ctx context.Context) (interface{}, error) {
		return handler(ctx, payload)
	})
	if err != nil {
		s.log.Error("failed to submit task", logger.Fields{
			"type":  req.Type,
			"error": err,
		})
		s.writeError(w, http.StatusServiceUnavailable, "failed to submit task")
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"task_id": id,
		"status":  task.StatusPending,
		"message": "task submitted, poll /api/v1/tasks/{task_id} for status",
	})
}

// handleStatus returns the current record for a task ID. Terminal
// records are immutable, so they are served from the result cache and
// written through on first read; live records always hit the store.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	var key string
	if s.cache != nil {
		key = cache.Key("task", taskID)
		data, hit, err := s.cache.Get(r.Context(), key)
		if err != nil {
			s.log.Warn("cache lookup failed", logger.Fields{
				"task_id": taskID,
				"error":   err,
			})
		} else if hit {
			s.writeRawJSON(w, http.StatusOK, data)
			return
		}
	}

	rec, err := s.queue.Status(r.Context(), taskID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.log.Error("failed to get task status", logger.Fields{
			"task_id": taskID,
			"error":   err,
		})
		s.writeError(w, http.StatusInternalServerError, "failed to get task status")
		return
	}

	if s.cache != nil && rec.Status.Terminal() {
		if data, err := json.Marshal(rec); err == nil {
			if err := s.cache.Set(r.Context(), key, data, s.cacheTTL); err != nil {
				s.log.Warn("cache store failed", logger.Fields{
					"task_id": taskID,
					"error":   err,
				})
			}
		}
	}

	s.writeJSON(w, http.StatusOK, rec)
}

// handleStats returns counts of tracked tasks by status
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.queue.Stats(r.Context())
	if err != nil {
		s.log.Error("failed to get task stats", logger.Fields{
			"error": err,
		})
		s.writeError(w, http.StatusInternalServerError, "failed to get task stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// handleHealth reports liveness plus backend mode, so a fallback to
// local state after a failed shared-store connection is observable
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"cache_enabled":   s.cache != nil,
		"redis_connected": s.shared,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// handleClearCache clears the result cache
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, http.StatusBadRequest, "caching is not enabled")
		return
	}

	if err := s.cache.Clear(r.Context()); err != nil {
		s.log.Error("failed to clear cache", logger.Fields{
			"error": err,
		})
		s.writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "cache cleared",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", logger.Fields{
			"error": err,
		})
	}
}

// writeRawJSON writes a pre-encoded JSON body
func (s *Server) writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.log.Error("failed to write response", logger.Fields{
			"error": err,
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": msg,
	})
}

// Middleware: withLogging logs all HTTP requests
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("HTTP request", logger.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		})
	})
}

// Middleware: withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
