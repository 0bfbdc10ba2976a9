// Package main is the entry point for the journey log API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/journeylog/internal/config"
	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/handler"
	"github.com/pkordes/journeylog/internal/middleware"
	"github.com/pkordes/journeylog/internal/reminder"
	"github.com/pkordes/journeylog/internal/repo"
	"github.com/pkordes/journeylog/internal/service"
	"github.com/pkordes/journeylog/migrations"
	"github.com/pkordes/journeylog/spec"
)

// journeysCollection is the record collection holding journeys.
const journeysCollection = "journeys"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// newLogger builds the JSON handler by default and a colourised tint handler
// for LOG_FORMAT=text.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.LogFormat == "text" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level, TimeFormat: time.Kitchen}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// stores bundles the persistence chosen by STORAGE_BACKEND.
type stores struct {
	journeys repo.Store[domain.Journey]
	settings repo.SettingsRepo
	close    func()
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		if err := migrate(ctx, cfg.DatabaseURL); err != nil {
			return stores{}, err
		}
		// pgxpool.New does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("connect to database: %w", err)
		}
		log.Info("database connection established")
		return stores{
			journeys: repo.NewPostgresStore[domain.Journey](pool, journeysCollection),
			settings: repo.NewPostgresSettings(pool),
			close:    pool.Close,
		}, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return stores{}, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return stores{}, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("redis connection established", "prefix", cfg.RedisPrefix)
		return stores{
			journeys: repo.NewRedisStore[domain.Journey](rdb, cfg.RedisPrefix, journeysCollection),
			settings: repo.NewRedisSettings(rdb, cfg.RedisPrefix),
			close:    func() { _ = rdb.Close() },
		}, nil

	default:
		log.Warn("using in-memory storage; data is lost on restart")
		return stores{
			journeys: repo.NewMemoryStore[domain.Journey](),
			settings: repo.NewMemorySettings(),
			close:    func() {},
		}, nil
	}
}

// migrate applies pending goose migrations through a short-lived database/sql handle.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// --- Storage ----------------------------------------------------------
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	journeyStore := repo.Instrument(st.journeys, journeysCollection, repo.NewStoreMetrics(reg))
	settingsRepo := repo.NewCachedSettings(st.settings, cfg.SettingsCacheTTL)

	// --- Services ---------------------------------------------------------
	scheduler := reminder.NewScheduler(cfg.ReminderInterval, reminder.NewLogNotifier(logger, reg), logger)
	defer scheduler.Close()

	journeys := service.NewJourneyService(journeyStore, scheduler, logger)
	settings := service.NewSettingsService(settingsRepo, logger)
	transfer := service.NewTransferService(journeyStore, journeys, cfg.BundleDir, logger)

	if err := os.MkdirAll(cfg.BundleDir, 0o755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}
	if err := settings.Load(ctx); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	n, err := journeys.ResumeReminders(ctx)
	if err != nil {
		return fmt.Errorf("resume reminders: %w", err)
	}
	logger.Info("reminders resumed", "journeys", n)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
	handler.NewServer(journeys, settings, transfer, logger).Register(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// Graceful shutdown: once a signal arrives (or the listener fails), give
	// in-flight requests up to 15 seconds to complete.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
