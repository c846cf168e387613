// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the vidshare JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/vidshare/internal/api/middleware"
	"github.com/ManuGH/vidshare/internal/audit"
	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/bookmarks"
	"github.com/ManuGH/vidshare/internal/config"
	"github.com/ManuGH/vidshare/internal/feed"
	"github.com/ManuGH/vidshare/internal/health"
	"github.com/ManuGH/vidshare/internal/ratelimit"
	"github.com/ManuGH/vidshare/internal/realtime"
	"github.com/ManuGH/vidshare/internal/store"
)

const (
	maxBodyBytes   = 64 << 10
	sseHeartbeat   = 25 * time.Second
	sseRetryMillis = 3000
)

// Deps holds the collaborators behind the API.
type Deps struct {
	Store     store.Store
	Feed      *feed.Loader
	Bus       realtime.Bus
	Bookmarks bookmarks.Store
	Tokens    *auth.Directory
	Uploads   *ratelimit.Limiter
	Health    *health.Manager
	Audit     *audit.Logger
}

// Server owns the router and the handlers.
type Server struct {
	cfg    config.AppConfig
	deps   Deps
	router chi.Router
	now    func() time.Time
}

// New builds the server and its routes. Optional deps get defaults.
func New(cfg config.AppConfig, deps Deps) *Server {
	if deps.Audit == nil {
		deps.Audit = audit.NewLogger()
	}
	if deps.Uploads == nil {
		deps.Uploads = ratelimit.New(ratelimit.DefaultConfig())
	}
	if deps.Health == nil {
		deps.Health = health.NewManager(cfg.Version)
	}
	if deps.Tokens == nil {
		deps.Tokens = auth.NewDirectory(cfg.API.Tokens)
	}
	s := &Server{cfg: cfg, deps: deps, now: time.Now}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	stack := middleware.StackConfig{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		EnableMetrics:  true,
		EnableLogging:  true,
		RateLimit:      s.cfg.Server.RateLimit,
		OnLimited: func(r *http.Request, limiter string) {
			s.deps.Audit.RateLimitExceeded(r.Context(), r.RemoteAddr, limiter)
		},
	}
	if s.cfg.Telemetry.Enabled {
		stack.TracingService = s.cfg.Telemetry.ServiceName
	}
	r := middleware.NewRouter(stack)

	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.deps.Tokens))

		r.Get("/videos", s.handleListVideos)
		r.Post("/videos", s.handleCreateVideo)
		r.Get("/videos/{id}", s.handleGetVideo)
		r.Post("/videos/{id}/likes", s.handleAdjustLikes)
		r.Get("/videos/{id}/comments", s.handleListComments)
		r.Post("/videos/{id}/comments", s.handleAddComment)

		r.Post("/ingest/preview", s.handlePreview)

		r.Get("/bookmarks", s.handleListBookmarks)
		r.Put("/bookmarks/{id}", s.handleSaveBookmark)
		r.Delete("/bookmarks/{id}", s.handleRemoveBookmark)

		r.Get("/events", s.handleEvents)
	})
	return r
}
