package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/hamza276/Document-Intellegent-System/internal/cache"
	"github.com/hamza276/Document-Intellegent-System/internal/config"
	"github.com/hamza276/Document-Intellegent-System/internal/logger"
	"github.com/hamza276/Document-Intellegent-System/internal/queue"
	"github.com/hamza276/Document-Intellegent-System/internal/server"
	"github.com/hamza276/Document-Intellegent-System/internal/store"
	"github.com/hamza276/Document-Intellegent-System/internal/task"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, "server")
	ctx := context.Background()

	// Backend selection: REDIS_URL set selects the shared store, with
	// fallback to local state if it is unreachable at startup.
	st := store.Open(ctx, cfg.RedisURL, log.WithComponent("store"))
	defer st.Close()

	var resultCache cache.Cache
	if cfg.Cache.Enabled {
		resultCache = cache.Open(ctx, cfg.RedisURL, log.WithComponent("cache"))
		defer resultCache.Close()
	}

	q := queue.New(st, log.WithComponent("queue"), queue.Config{
		Workers: cfg.Worker.MaxWorkers,
	})
	q.Start()

	registry := task.NewRegistry()
	registerHandlers(registry, log)

	// The queue never schedules its own sweeps; retention runs on the
	// schedule this composition layer owns.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Retention.SweepSchedule, func() {
		if _, err := q.Cleanup(context.Background(), cfg.Retention.MaxAge); err != nil {
			log.Error("retention sweep failed", logger.Fields{
				"error": err,
			})
		}
	}); err != nil {
		log.Error("invalid sweep schedule", logger.Fields{
			"schedule": cfg.Retention.SweepSchedule,
			"error":    err,
		})
		os.Exit(1)
	}
	sweeper.Start()

	srv := server.New(server.Config{
		Addr:     cfg.Server.ListenAddr,
		Queue:    q,
		Registry: registry,
		Cache:    resultCache,
		CacheTTL: cfg.Cache.TTL,
		Shared:   store.Shared(st),
		Logger:   log.WithComponent("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", logger.Fields{
			"signal": sig.String(),
		})
	case err := <-errCh:
		log.Error("HTTP server failed", logger.Fields{
			"error": err,
		})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	<-sweeper.Stop().Done()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", logger.Fields{
			"error": err,
		})
	}
	if err := q.Shutdown(shutdownCtx); err != nil {
		log.Error("task queue shutdown failed", logger.Fields{
			"error": err,
		})
	}
}

// registerHandlers wires the task types this deployment can execute.
// The document pipelines register their own handlers here as they come
// online; "default" stays available for smoke testing a deployment.
func registerHandlers(registry *task.Registry, log *logger.Logger) {
	if err := registry.Register("default", func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		log.Debug("processing default task", logger.Fields{
			"payload_bytes": len(payload),
		})
		return map[string]interface{}{"echo": payload}, nil
	}); err != nil {
		log.Error("failed to register handler", logger.Fields{
			"error": err,
		})
	}
}
