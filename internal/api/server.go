// Package api serves fixtures, analyses and simulations to the UI.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/health"
	"github.com/yourusername/betmind/internal/metrics"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/simulation"
)

// Analyzer is the analysis orchestrator as seen by the handlers.
type Analyzer interface {
	GetAnalysis(ctx context.Context, fixture models.FixtureRef, refresh bool) (*models.AnalysisArtifact, error)
	CachedAnalysis(ctx context.Context, entityID string) (*models.AnalysisArtifact, bool)
}

// FixtureLister lists the day's open fixtures.
type FixtureLister interface {
	ListFixtures(ctx context.Context, category string, refresh bool) ([]models.FixtureRef, error)
}

// Config holds the HTTP server settings
type Config struct {
	Address         string
	Mode            string
	ShutdownTimeout time.Duration
	MetricsPath     string
}

// Server is the HTTP API
type Server struct {
	cfg       Config
	engine    *gin.Engine
	server    *http.Server
	analyzer  Analyzer
	fixtures  FixtureLister
	simulator *simulation.Simulator
	health    *health.Server
	logger    *logrus.Logger
}

// NewServer builds the router. health may be nil.
func NewServer(cfg Config, analyzer Analyzer, fixtures FixtureLister, simulator *simulation.Simulator, hs *health.Server, logger *logrus.Logger) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	s := &Server{
		cfg:       cfg,
		engine:    gin.New(),
		analyzer:  analyzer,
		fixtures:  fixtures,
		simulator: simulator,
		health:    hs,
		logger:    logger,
	}
	s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery(), s.requestLogger())

	if s.health != nil {
		s.engine.GET("/health", gin.WrapF(s.health.HandleHealth))
		s.engine.GET("/ready", gin.WrapF(s.health.HandleReady))
		s.engine.GET("/live", gin.WrapF(s.health.HandleLive))
	}
	if s.cfg.MetricsPath != "" {
		s.engine.GET(s.cfg.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/fixtures", s.listFixtures)
		v1.POST("/analysis", s.createAnalysis)
		v1.GET("/analysis/:id", s.getAnalysis)
		v1.POST("/simulate", s.simulate)
	}
}

// Start serves in the background until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.cfg.Address).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("Request served")
	}
}
