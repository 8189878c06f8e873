// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the composition root of the HTTP transport (chi router).
  - Access control is decided here, per route group, so handlers never check roles.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/gazette/internal/platform/config"
	"github.com/taibuivan/gazette/internal/platform/constants"
	"github.com/taibuivan/gazette/internal/platform/metrics"
	"github.com/taibuivan/gazette/internal/platform/middleware"
	"github.com/taibuivan/gazette/internal/platform/sec"
	"github.com/taibuivan/gazette/internal/users/account"
	"github.com/taibuivan/gazette/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// SystemInfo serves the admin console's process summary.
	SystemInfo http.HandlerFunc

	// Auth handles the guest flows (register, login, password recovery).
	Auth *auth.Handler

	// Account handles the signed-in area and admin user lookup.
	Account *account.Handler
}

// Observability groups the metrics plumbing.
type Observability struct {
	Recorder *metrics.Recorder
	Gatherer prometheus.Gatherer
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers, obs Observability) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)
	r.Use(middleware.Authenticate(verifier))

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))

	// # Application API
	// Each group is fenced by its gate before any handler runs.
	r.Route("/api", func(api chi.Router) {
		api.Use(chimw.NoCache)

		api.Route("/guest", func(guest chi.Router) {
			guest.Use(middleware.Allow(sec.RoleGuest, obs.Recorder))
			guest.Mount("/", h.Auth.Routes())
		})

		api.Route("/user", func(user chi.Router) {
			user.Use(middleware.Deny(sec.RoleGuest, obs.Recorder))
			user.Mount("/", h.Account.UserRoutes())
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.Allow(sec.RoleAdmin, obs.Recorder))
			admin.Get("/system_info", h.SystemInfo)
			admin.Mount("/", h.Account.AdminRoutes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
