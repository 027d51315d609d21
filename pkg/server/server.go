package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"p3a-hq/manifest/pkg/config"
	"p3a-hq/manifest/pkg/history"
	"p3a-hq/manifest/pkg/processing"
	"p3a-hq/manifest/pkg/telemetry/health"
	"p3a-hq/manifest/pkg/telemetry/logging"
	"p3a-hq/manifest/pkg/telemetry/metrics"
)

// ErrAlreadyRunning is returned by Start on a running server.
var ErrAlreadyRunning = errors.New("server is already running")

// StatusSource provides the latest build report.
type StatusSource interface {
	Last() *processing.Report
}

// Options holds what the server exposes. Every field is optional.
type Options struct {
	// Collector serves the metrics endpoint at MetricsPath.
	Collector   *metrics.Collector
	MetricsPath string

	// Health answers the readiness probe.
	Health *health.Checker

	// Status answers /status.
	Status StatusSource

	// History answers /builds.
	History *history.Store

	Version string
	Logger  *logging.Logger
}

// Server is the ops HTTP server.
type Server struct {
	config     config.ServerConfig
	opts       Options
	logger     *logging.Logger
	httpServer *http.Server
	listener   net.Listener

	mu           sync.RWMutex
	running      bool
	shutdownOnce sync.Once
}

// New creates a server. It does not listen until Start is called.
func New(cfg config.ServerConfig, opts Options) *Server {
	if opts.MetricsPath == "" {
		opts.MetricsPath = config.DefaultMetricsPath
	}
	if opts.Health == nil {
		opts.Health = health.New(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		config: cfg,
		opts:   opts,
		logger: logger.With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.running = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting ops server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops the server, waiting up to the configured timeout for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	running, srv := s.running, s.httpServer
	s.mu.RUnlock()
	if !running {
		return nil
	}

	var shutdownErr error
	s.shutdownOnce.Do(func() {

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultServerShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.logger.Info("ops server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the address the server listens on, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.opts.Health.LivenessHandler())
	r.Head("/health", s.opts.Health.LivenessHandler())
	r.Get("/ready", s.opts.Health.ReadinessHandler())
	r.Head("/ready", s.opts.Health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.opts.Version))

	if s.opts.Collector != nil && s.opts.Collector.Enabled() {
		r.Handle(s.opts.MetricsPath, s.opts.Collector.Handler())
	}

	r.Get("/status", s.handleStatus)

	if s.opts.History != nil {
		r.Route("/builds", func(r chi.Router) {
			r.Get("/", s.handleListBuilds)
			r.Get("/{id}", s.handleGetBuild)
		})
	}

	return r
}

// logRequests logs every request at debug level, except probes and
// scrapes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		switch r.URL.Path {
		case "/health", "/ready", s.opts.MetricsPath:
			return
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
