// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names the storage implementation behind the record and settings stores.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat is "json" (default) or "text" for colourised console output.
	LogFormat string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Backend selects where journeys and settings live. Defaults to memory.
	Backend Backend

	// DatabaseURL is the Postgres connection string. Required for the postgres backend.
	DatabaseURL string

	// RedisURL is a redis:// URL. Required for the redis backend.
	RedisURL string

	// RedisPrefix namespaces every Redis key. Defaults to "journeylog".
	RedisPrefix string

	// SettingsCacheTTL bounds how stale a cached setting may be. Zero disables the cache.
	SettingsCacheTTL time.Duration

	// ReminderInterval is the period between reminders for an ongoing journey.
	ReminderInterval time.Duration

	// BundleDir is the directory export bundles are written to and imported from.
	BundleDir string

	// MaxBodyBytes caps request bodies. Zero disables the limit.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// All problems are reported together in one error.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Backend:     Backend(getEnv("STORAGE_BACKEND", string(BackendMemory))),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		RedisPrefix: getEnv("REDIS_PREFIX", "journeylog"),
		BundleDir:   getEnv("BUNDLE_DIR", "./bundles"),
	}

	var errs []error
	var missing []string

	switch cfg.Backend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", cfg.Backend))
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT: must be json or text, got %q", cfg.LogFormat))
	}

	var err error
	if cfg.SettingsCacheTTL, err = getDuration("SETTINGS_CACHE_TTL", 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.ReminderInterval, err = getDuration("REMINDER_INTERVAL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	} else if cfg.ReminderInterval <= 0 {
		errs = append(errs, errors.New("REMINDER_INTERVAL: must be positive"))
	}
	if cfg.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", 1<<20); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid non-negative integer %q", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
