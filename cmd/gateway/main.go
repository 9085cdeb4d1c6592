// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

// Command gateway is the entry point for the Voltora storefront gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env in development).
//  3. Connect to PostgreSQL (pgxpool) — durable session backend.
//  4. Connect to Redis — primary session backend and invalidation channel.
//  5. Run database migrations (idempotent).
//  6. Wire the session store, API clients, and query cache.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voltora-energy/storefront/internal/api"
	"github.com/voltora-energy/storefront/internal/catalog"
	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/imageproxy"
	"github.com/voltora-energy/storefront/internal/platform/config"
	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/internal/platform/migration"
	pgstore "github.com/voltora-energy/storefront/internal/platform/postgres"
	redisstore "github.com/voltora-energy/storefront/internal/platform/redis"
	"github.com/voltora-energy/storefront/internal/platform/sec"
	"github.com/voltora-energy/storefront/internal/querycache"
	"github.com/voltora-energy/storefront/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("backend", cfg.APIBaseURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Session Store & Query Cache ────────────────────────────────────
	sealer, err := sec.NewSealer(cfg.SessionSecret)
	must(log, err, "initialize session sealer")

	var sessionBackend session.Backend
	switch cfg.SessionBackend {
	case "postgres":
		sessionBackend = session.NewPostgresBackend(pool)
	default:
		sessionBackend = session.NewRedisBackend(rdb)
	}
	sessions := session.NewStore(sessionBackend, sealer, log)

	broadcaster := querycache.NewRedisBroadcaster(rdb, log)
	cache := querycache.New(
		querycache.WithBroadcaster(broadcaster),
		querycache.WithLogger(log),
	)

	listenCtx, listenCancel := context.WithCancel(context.Background())
	defer listenCancel()
	go broadcaster.Listen(listenCtx, cache)

	// Warm the slow-changing catalog reads so the first page render after a
	// deploy does not pay the fetch latency.
	customerAPI := httpapi.NewClient(session.DomainCustomer, cfg.APIBaseURL, sessions, httpapi.WithLogger(log))
	catalogClient := catalog.NewClient(customerAPI, cache, log)
	go warmCatalog(listenCtx, catalogClient, log)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	backendProbe := &http.Client{Timeout: constants.DefaultBackendTimeout}
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckBackend: func() error {
			response, err := backendProbe.Head(cfg.APIBaseURL)
			if err != nil {
				return err
			}
			return response.Body.Close()
		},
	}, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		ImageProxy: imageproxy.NewHandler(cfg.AllowedProxyHosts()),
	}

	server := api.NewServer(listenCtx, cfg, log, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// warmCatalog primes the brand and category caches. Failures are advisory;
// the storefront falls back to fetching on demand.
func warmCatalog(ctx context.Context, client *catalog.Client, log *slog.Logger) {
	if _, err := client.Brands(ctx); err != nil {
		log.Warn("catalog_warmup_brands_failed", slog.Any("error", err))
	}
	if _, err := client.Categories(ctx); err != nil {
		log.Warn("catalog_warmup_categories_failed", slog.Any("error", err))
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
