package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hirelab/vacancyload/internal/ratelimit"
	"github.com/hirelab/vacancyload/internal/session"
	"github.com/hirelab/vacancyload/internal/store"
)

// Server is the mock vacancy HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// Config holds all dependencies and settings for creating a Server.
type Config struct {
	Store    *store.Store
	Sessions *session.Registry
	Logger   *slog.Logger

	// RateLimiter throttles requests per client IP. Nil disables throttling.
	RateLimiter ratelimit.Limiter

	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
}

// New creates a new HTTP server with all routes configured.
func New(cfg Config) *Server {
	h := NewHandlers(cfg.Store, cfg.Sessions, cfg.Logger, cfg.Version)

	mux := http.NewServeMux()

	// Anonymous-entry methods (gate bypass applies only without a header).
	mux.HandleFunc("POST /auth/signin", h.HandleSignIn)
	mux.HandleFunc("POST /auth/signup", h.HandleSignUp)

	// Vacancy CRUD + streamed listing.
	mux.HandleFunc("POST /v1/vacancies", h.HandleCreateVacancy)
	mux.HandleFunc("GET /v1/vacancies", h.HandleListVacancies)
	mux.HandleFunc("GET /v1/vacancies/{id}", h.HandleGetVacancy)
	mux.HandleFunc("PUT /v1/vacancies/{id}", h.HandleUpdateVacancy)
	mux.HandleFunc("DELETE /v1/vacancies/{id}", h.HandleDeleteVacancy)

	// Health (anonymous, like the auth entry points).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain, outermost first: request ID, tracing, logging, rate
	// limit, auth gate, recovery, handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.Sessions, handler)
	if cfg.RateLimiter != nil {
		handler = rateLimitMiddleware(cfg.RateLimiter, cfg.Logger, handler)
	}
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
