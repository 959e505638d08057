// Package server exposes the generator over HTTP.
//
// Routes:
//
//	GET    /healthz                    liveness probe
//	GET    /version                    build information
//	GET    /metrics                    Prometheus metrics
//	GET    /api/render                 render a composition from query parameters
//	POST   /api/compositions           generate and record a composition
//	GET    /api/gallery                list recorded compositions
//	GET    /api/gallery/{id}           one record
//	GET    /api/gallery/{id}/image     re-render a record
//	DELETE /api/gallery/{id}           delete a record
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mondrian/pkg/gallery"
	"github.com/matzehuels/mondrian/pkg/pipeline"
)

// Default request limits. A request beyond them is rejected before any
// pixels are allocated.
const (
	DefaultMaxPixels = 4096 * 4096
	DefaultMaxLevels = 16

	shutdownTimeout = 10 * time.Second
)

// Limits bound the work a single request may ask for.
type Limits struct {
	MaxPixels uint64
	MaxLevels int
}

// Server serves compositions and the gallery.
type Server struct {
	runner   *pipeline.Runner
	store    gallery.Store
	logger   *log.Logger
	gatherer prometheus.Gatherer
	limits   Limits
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLimits overrides the default request limits. Zero fields keep their
// defaults.
func WithLimits(l Limits) Option {
	return func(s *Server) {
		if l.MaxPixels > 0 {
			s.limits.MaxPixels = l.MaxPixels
		}
		if l.MaxLevels > 0 {
			s.limits.MaxLevels = l.MaxLevels
		}
	}
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates a server. A nil logger uses the default logger.
func New(runner *pipeline.Runner, store gallery.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		store:  store,
		logger: logger,
		limits: Limits{MaxPixels: DefaultMaxPixels, MaxLevels: DefaultMaxLevels},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/render", s.handleRender)
		r.Post("/compositions", s.handleCreate)
		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
			r.Get("/{id}/image", s.handleImage)
			r.Delete("/{id}", s.handleDelete)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
