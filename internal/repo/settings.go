package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// SettingsRepo persists named string settings.
// Typing and defaults belong to the service layer.
type SettingsRepo interface {
	// Get returns the stored value and true, or "" and false if the key has
	// never been written.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// memorySettings is the in-process implementation of SettingsRepo.
type memorySettings struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySettings constructs an empty SettingsRepo held in process memory.
func NewMemorySettings() SettingsRepo {
	return &memorySettings{values: make(map[string]string)}
}

func (m *memorySettings) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memorySettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// pgSettings is the Postgres implementation of SettingsRepo.
type pgSettings struct {
	db db
}

// NewPostgresSettings constructs a SettingsRepo backed by the settings table.
func NewPostgresSettings(db db) SettingsRepo {
	return &pgSettings{db: db}
}

func (r *pgSettings) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM settings WHERE key = $1`

	var v string
	if err := r.db.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("repo.PostgresSettings.Get: %w", err)
	}
	return v, true, nil
}

func (r *pgSettings) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("repo.PostgresSettings.Set: %w", err)
	}
	return nil
}

// redisSettings keeps every setting as a field of the <prefix>:settings hash.
type redisSettings struct {
	rdb *redis.Client
	key string
}

// NewRedisSettings constructs a SettingsRepo stored under keyPrefix.
func NewRedisSettings(rdb *redis.Client, keyPrefix string) SettingsRepo {
	return &redisSettings{rdb: rdb, key: keyPrefix + ":settings"}
}

func (r *redisSettings) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, r.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("repo.RedisSettings.Get: %w", err)
	}
	return v, true, nil
}

func (r *redisSettings) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("repo.RedisSettings.Set: %w", err)
	}
	return nil
}
