package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the backend
type Config struct {
	// RedisURL selects the shared store and cache backend. Empty selects
	// the process-local backends. This is the only backend selector.
	RedisURL string

	Server    ServerConfig
	Worker    WorkerConfig
	Cache     CacheConfig
	Retention RetentionConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string
}

// WorkerConfig holds task execution settings
type WorkerConfig struct {
	// MaxWorkers is the number of concurrent task execution slots
	MaxWorkers int
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// RetentionConfig holds task record retention settings
type RetentionConfig struct {
	// MaxAge is how long task records are kept before a sweep removes them
	MaxAge time.Duration

	// SweepSchedule is a cron spec for when sweeps run, e.g. "@every 10m"
	SweepSchedule string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Default returns the configuration from the environment with sensible
// defaults for anything unset
func Default() *Config {
	return &Config{
		RedisURL: getEnv("REDIS_URL", ""),
		Server: ServerConfig{
			ListenAddr: getEnv("LISTEN_ADDR", ":8000"),
		},
		Worker: WorkerConfig{
			MaxWorkers: getEnvInt("MAX_WORKERS", 4),
		},
		Cache: CacheConfig{
			Enabled: getEnvBool("CACHE_ENABLED", true),
			TTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Retention: RetentionConfig{
			MaxAge:        getEnvDuration("TASK_RETENTION", time.Hour),
			SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 10m"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.Worker.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be at least 1")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when caching is enabled")
	}
	if c.Retention.MaxAge <= 0 {
		return fmt.Errorf("task retention must be positive")
	}
	if c.Retention.SweepSchedule == "" {
		return fmt.Errorf("sweep schedule cannot be empty")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable (Go duration
// syntax, or bare seconds for compatibility) or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
