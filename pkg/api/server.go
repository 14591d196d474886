// Package api serves trade profiles and network analyses over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/auth"
	"github.com/dd0wney/cluso-tradenet/pkg/health"
	"github.com/dd0wney/cluso-tradenet/pkg/logging"
	"github.com/dd0wney/cluso-tradenet/pkg/metrics"
	"github.com/dd0wney/cluso-tradenet/pkg/source"
	"github.com/dd0wney/cluso-tradenet/pkg/validation"
)

// Config wires the collaborators of the API server. Engine and Source are
// required; everything else has a usable default.
type Config struct {
	Engine  *analysis.Engine
	Source  source.FlowSource
	Health  *health.HealthChecker
	Metrics *metrics.Registry
	Logger  logging.Logger

	// Tokens authenticates /api/v1 and /graphql. Nil disables authentication.
	Tokens auth.TokenValidator

	// GraphQL is mounted at POST /graphql when set.
	GraphQL http.Handler

	// Options are the analysis defaults; query parameters override them
	// per request.
	Options analysis.Options

	// Timeout bounds a single analysis request. Zero means no limit
	// beyond the client's own.
	Timeout time.Duration

	CORSOrigins []string
	Version     string
}

// Server represents the HTTP API server
type Server struct {
	engine      *analysis.Engine
	source      source.FlowSource
	health      *health.HealthChecker
	metrics     *metrics.Registry
	logger      logging.Logger
	tokens      auth.TokenValidator
	graphql     http.Handler
	options     analysis.Options
	timeout     time.Duration
	corsOrigins []string
	version     string
	startTime   time.Time

	handler    http.Handler
	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if cfg.Source == nil {
		return nil, errors.New("api: source is required")
	}

	s := &Server{
		engine:      cfg.Engine,
		source:      cfg.Source,
		health:      cfg.Health,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		tokens:      cfg.Tokens,
		graphql:     cfg.GraphQL,
		options:     cfg.Options,
		timeout:     cfg.Timeout,
		corsOrigins: cfg.CORSOrigins,
		version:     cfg.Version,
		startTime:   time.Now(),
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	s.logger = s.logger.With(logging.Component("api"))
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	if s.options == (analysis.Options{}) {
		s.options = analysis.DefaultOptions()
	}
	if len(s.corsOrigins) == 0 {
		s.corsOrigins = []string{"*"}
	}
	s.version = validation.DefaultOr(s.version, "dev")
	s.metrics.SetBuildInfo(s.version)
	if s.health == nil {
		s.health = health.NewHealthChecker(s.version)
		s.health.RegisterReadinessCheck("source", health.SourceCheck(s.source.Name(), s.source, 2*time.Second))
		s.health.RegisterLivenessCheck("goroutines", health.GoroutineCheck(10000))
		s.health.RegisterLivenessCheck("memory", health.MemoryCheck(health.RuntimeMemory))
	}

	s.handler = s.routes()
	return s, nil
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on addr and serves until Shutdown is called. It returns
// nil after a graceful shutdown.
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln, readTimeout, writeTimeout)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener, readTimeout, writeTimeout time.Duration) error {
	// Analyses may run longer than the default write timeout allows.
	if s.timeout > 0 && writeTimeout < s.timeout+5*time.Second {
		writeTimeout = s.timeout + 5*time.Second
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go s.updateMetricsPeriodically(stop)

	s.logger.Info("API server listening",
		logging.String("addr", ln.Addr().String()),
		logging.Source(s.source.Name()),
		logging.Bool("auth", s.tokens != nil),
	)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("API server shutting down")
	return srv.Shutdown(ctx)
}

// updateMetricsPeriodically refreshes the runtime gauges every 10 seconds
func (s *Server) updateMetricsPeriodically(stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	s.metrics.UpdateSystemMetrics(s.startTime)
	for {
		select {
		case <-ticker.C:
			s.metrics.UpdateSystemMetrics(s.startTime)
		case <-stop:
			return
		}
	}
}
