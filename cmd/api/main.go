// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Gazette HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build the token codec, hasher, CAPTCHA verifier, and metrics registry.
//  6. Wire the auth and account handlers.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/gazette/internal/api"
	"github.com/taibuivan/gazette/internal/platform/captcha"
	"github.com/taibuivan/gazette/internal/platform/config"
	"github.com/taibuivan/gazette/internal/platform/constants"
	"github.com/taibuivan/gazette/internal/platform/metrics"
	"github.com/taibuivan/gazette/internal/platform/migration"
	pgstore "github.com/taibuivan/gazette/internal/platform/postgres"
	redisstore "github.com/taibuivan/gazette/internal/platform/redis"
	"github.com/taibuivan/gazette/internal/platform/sec"
	"github.com/taibuivan/gazette/internal/platform/validate"
	"github.com/taibuivan/gazette/internal/users/account"
	"github.com/taibuivan/gazette/internal/users/auth"
)

func main() {
	startedAt := time.Now()

	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context: cancelled on SIGINT/SIGTERM, stops background sweepers.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Security & Observability ───────────────────────────────────────
	codec, err := sec.NewTokenCodec([]byte(cfg.TokenSecret), constants.AuthIssuer, cfg.TokenTTLs())
	must(log, err, "initialize token codec")

	hasher := sec.NewBcryptHasher(0)

	var verifier validate.Verifier = captcha.Disabled{}
	if cfg.RecaptchaSecret != "" {
		verifier = captcha.NewRecaptcha(cfg.RecaptchaSecret, cfg.RecaptchaVerifyURL, nil, log)
	} else {
		log.Warn("recaptcha_disabled", slog.String("environment", cfg.Environment))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	directory := auth.NewPostgresDirectory(pool)

	authService, err := auth.NewService(auth.Deps{
		Directory: directory,
		Hasher:    hasher,
		Tokens:    codec,
		Notifier:  auth.NewRedisNotifier(rdb),
		Captcha:   verifier,
		Metrics:   recorder,
	})
	must(log, err, "initialize auth service")

	accountService := account.NewService(directory, hasher, codec)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		SystemInfo: api.NewSystemInfoHandler(cfg.Environment, startedAt),
		Auth:       auth.NewHandler(authService, cfg.IsProduction()),
		Account:    account.NewHandler(accountService, cfg.IsProduction()),
	}

	server := api.NewServer(rootCtx, cfg, log, codec, handlers, api.Observability{
		Recorder: recorder,
		Gatherer: registry,
	})

	// ── 7. Serve & Graceful Shutdown ──────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger every entry of which carries the app name.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
