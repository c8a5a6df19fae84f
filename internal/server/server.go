package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"gapscout/internal/analysis"
	"gapscout/internal/config"
	"gapscout/internal/core"
	"gapscout/internal/logger"
	"gapscout/internal/metrics"
)

// Analyzer runs keyword gap analyses. *analysis.Service satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*core.AnalysisResult, error)
	Strategies() []core.StrategyName
}

// Server represents the HTTP server
type Server struct {
	router       *chi.Mux
	httpServer   *http.Server
	analyzer     Analyzer
	metrics      *metrics.Metrics
	config       config.Server
	readTimeout  time.Duration
	writeTimeout time.Duration
	log          *zerolog.Logger
	started      time.Time
}

// New creates a new HTTP server instance
func New(analyzer Analyzer, m *metrics.Metrics, cfg config.Server) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		analyzer:     analyzer,
		metrics:      m,
		config:       cfg,
		readTimeout:  config.Duration(cfg.ReadTimeout, 15*time.Second),
		writeTimeout: config.Duration(cfg.WriteTimeout, 120*time.Second),
		log:          logger.Get(),
		started:      time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)

	// Analyses may wait on several provider calls; stop just short of the write deadline.
	if s.writeTimeout > 2*time.Second {
		s.router.Use(middleware.Timeout(s.writeTimeout - time.Second))
	}

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}

	s.router.Use(securityHeaders)
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(noCache)
		r.Get("/strategies", s.handleStrategies)
		r.Post("/gaps", s.handleAnalyze)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.httpServer.Addr).
		Dur("read_timeout", s.readTimeout).
		Dur("write_timeout", s.writeTimeout).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("HTTP server stopped")
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
