// Package server provides the HTTP API server with middleware and
// graceful shutdown.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/basketfx/txprep/internal/config"
	"github.com/basketfx/txprep/internal/logger"
	"github.com/basketfx/txprep/internal/ratelimit"
)

// RouteRegistrar mounts a group of routes on the router.
type RouteRegistrar interface {
	MountRoutes(r chi.Router)
}

// Server wraps http.Server with the project's standard middleware chain.
type Server struct {
	cfg    config.ServerConfig
	logger logger.LoggerInterface
	router chi.Router
	srv    *http.Server
}

// New builds the server and its middleware chain. Call Mount to attach
// handler groups before Start.
func New(cfg config.ServerConfig, log logger.LoggerInterface) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.RatePerMinute > 0 {
		limiter := ratelimit.New(cfg.RatePerMinute)
		r.Use(rateLimitMiddleware(limiter))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		cfg:    cfg,
		logger: log,
		router: r,
	}
}

// Mount attaches a handler group under the given prefix.
func (s *Server) Mount(prefix string, reg RouteRegistrar) {
	s.router.Route(prefix, func(r chi.Router) {
		reg.MountRoutes(r)
	})
}

// Router exposes the underlying router, mostly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	handler := otelhttp.NewHandler(s.router, "http.server")

	s.srv = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info(context.Background(), "http server listening", "addr", s.cfg.ListenAddr)

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func rateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
