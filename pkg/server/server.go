// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes workflow validation over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jllopis/agentdeck/pkg/agents"
	"github.com/jllopis/agentdeck/pkg/audit"
	"github.com/jllopis/agentdeck/pkg/workflow"
)

const defaultMaxBody = 10 << 20

// Server serves the validation API.
type Server struct {
	router   chi.Router
	service  atomic.Pointer[workflow.Service]
	store    audit.Store
	platform agents.Platform
	logger   *slog.Logger
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithAuditStore enables GET /api/v1/validations.
func WithAuditStore(store audit.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithPlatform enables POST /api/v1/workflows. Submissions are validated
// with the current service, so SetService applies to them too.
func WithPlatform(platform agents.Platform) Option {
	return func(s *Server) { s.platform = platform }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxBodyBytes limits the size of submitted documents.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New creates a server around service.
func New(service *workflow.Service, opts ...Option) *Server {
	if service == nil {
		service = workflow.NewService(nil)
	}
	s := &Server{
		logger:  slog.Default(),
		maxBody: defaultMaxBody,
	}
	s.service.Store(service)
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// SetService swaps the validation service, for example after the
// configuration changed. In-flight requests finish on the old one.
func (s *Server) SetService(service *workflow.Service) {
	if service != nil {
		s.service.Store(service)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/workflows/validate", s.handleValidate)
		r.Post("/workflows", s.handleCreate)
		r.Get("/node-types", s.handleNodeTypes)
		r.Get("/node-types/{type}", s.handleNodeType)
		r.Get("/validations", s.handleValidations)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
