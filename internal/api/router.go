// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/entremotivator/Calive/internal/api/handlers"
	"github.com/entremotivator/Calive/internal/api/middleware"
	"github.com/entremotivator/Calive/internal/pkg/logger"
)

// RouterConfig contains configuration for setting up routes.
type RouterConfig struct {
	// CORSConfig is the CORS configuration.
	CORSConfig middleware.CORSConfig

	// RateLimitPerMinute is the per-session rate limit for API requests.
	RateLimitPerMinute int

	// RequestTimeout is the timeout for HTTP requests.
	RequestTimeout time.Duration

	// Logger for request logging.
	Logger *logger.Logger
}

// DefaultRouterConfig returns a default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSConfig:         middleware.DefaultCORSConfig(),
		RateLimitPerMinute: 300,
		RequestTimeout:     30 * time.Second,
	}
}

// NewRouter creates and configures the chi router with all routes and
// middleware. Session resolution runs before any API handler so every
// route operates on the caller's own calendar state.
func NewRouter(config RouterConfig, sessions *middleware.SessionManager) chi.Router {
	r := chi.NewRouter()

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	// =========================================================================
	// Global Middleware
	// =========================================================================

	// Request ID (must be first)
	r.Use(chimiddleware.RequestID)

	// Real IP extraction from proxy headers
	r.Use(chimiddleware.RealIP)

	// Structured request logging
	r.Use(middleware.RequestLogging(log))

	// Panic recovery
	r.Use(chimiddleware.Recoverer)

	// CORS
	r.Use(middleware.CORS(config.CORSConfig))

	// =========================================================================
	// Health Check (no session required)
	// =========================================================================

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// =========================================================================
	// API Routes
	// =========================================================================

	eventsHandler := handlers.NewEventsHandler(log)
	calendarsHandler := handlers.NewCalendarsHandler(log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.RequestTimeout))

		// Session resolution keyed by X-Session-ID
		r.Use(sessions.Middleware)

		// Per-session rate limiting
		rateLimit := config.RateLimitPerMinute
		if rateLimit <= 0 {
			rateLimit = 300
		}
		r.Use(middleware.RateLimitBySession(rateLimit, time.Minute))

		r.Mount("/", eventsHandler.Routes())
		r.Mount("/calendars", calendarsHandler.Routes())
	})

	return r
}
