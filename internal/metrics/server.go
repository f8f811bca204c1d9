package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/deviceservice/internal/infrastructure/config"
	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
)

const shutdownTimeout = 5 * time.Second

// Server serves the metrics registry on a dedicated listener.
type Server struct {
	cfg      config.MetricsConfig
	metrics  *Metrics
	logger   *logging.Logger
	extra    map[string]http.Handler
	server   *http.Server
	listener net.Listener
}

// NewServer creates a metrics server. It does not listen until Start.
func NewServer(cfg config.MetricsConfig, m *Metrics, logger *logging.Logger) *Server {
	return &Server{
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "metrics"),
		extra:   make(map[string]http.Handler),
	}
}

// Mount serves h at pattern alongside the scrape endpoint. Call it before
// Start.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.extra[pattern] = h
}

// Handler returns the scrape handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle(s.cfg.Path, promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	for pattern, h := range s.extra {
		r.Handle(pattern, h)
	}
	return r
}

// Start binds the listener and serves in the background.
//
// Returns:
//   - error: If the address cannot be bound
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", s.cfg.Address, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", "error", err)
		}
	}()

	s.logger.Info("metrics server started", "address", ln.Addr().String(), "path", s.cfg.Path)
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close shuts the listener down.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down metrics server: %w", err)
	}
	return nil
}
