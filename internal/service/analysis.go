package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/cache"
	"github.com/yourusername/betmind/internal/identity"
	"github.com/yourusername/betmind/internal/logger"
	"github.com/yourusername/betmind/internal/metrics"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/repair"
	"github.com/yourusername/betmind/internal/simulation"
	"github.com/yourusername/betmind/internal/store"
)

// ErrAnalysisUnavailable is returned when no artifact is cached and the
// inference service could not produce one.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// AnalysisSource produces raw forecasts for a fixture.
type AnalysisSource interface {
	FetchAnalysis(ctx context.Context, fixture models.FixtureRef) (string, error)
}

// AnalysisService serves analysis artifacts from the process cache, then the
// remote store, then the inference service.
type AnalysisService struct {
	source    AnalysisSource
	cache     *cache.Cache[*models.AnalysisArtifact]
	gateway   *store.Gateway
	writer    *store.Writer
	simulator *simulation.Simulator
	logger    *logger.AnalysisLogger
	now       func() time.Time
}

// NewAnalysisService creates the analysis orchestrator
func NewAnalysisService(
	source AnalysisSource,
	artifacts *cache.Cache[*models.AnalysisArtifact],
	gateway *store.Gateway,
	writer *store.Writer,
	simulator *simulation.Simulator,
	log *logrus.Logger,
) *AnalysisService {
	return &AnalysisService{
		source:    source,
		cache:     artifacts,
		gateway:   gateway,
		writer:    writer,
		simulator: simulator,
		logger:    logger.NewAnalysisLogger(log),
		now:       time.Now,
	}
}

// GetAnalysis returns the artifact for fixture. With refresh set both cache
// tiers are skipped and the new artifact replaces the stored one. Only an
// exhausted inference call is reported as an error.
func (s *AnalysisService) GetAnalysis(ctx context.Context, fixture models.FixtureRef, refresh bool) (*models.AnalysisArtifact, error) {
	start := time.Now()
	if fixture.ID == "" {
		fixture.ID = identity.MakeID(fixture.ParticipantA, fixture.ParticipantB)
	}
	if fixture.Category == "" {
		fixture.Category = models.DeriveCategory(fixture.League, "")
	}

	if !refresh {
		if artifact, tier, ok := s.cached(ctx, fixture.ID); ok {
			metrics.RecordAnalysis(tier, time.Since(start).Seconds())
			return artifact, nil
		}
	}

	requestID := uuid.NewString()
	callStart := time.Now()
	text, err := s.source.FetchAnalysis(ctx, fixture)
	s.logger.LogInferenceCall(requestID, fixture.ID, time.Since(callStart), err)
	if err != nil {
		metrics.RecordAnalysis("failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s: %w", ErrAnalysisUnavailable, fixture.ID, err)
	}

	artifact, err := s.build(fixture, text)
	if err != nil {
		metrics.RecordAnalysis("failed", time.Since(start).Seconds())
		return nil, err
	}
	s.simulate(ctx, fixture, artifact)

	s.cache.Set(fixture.ID, artifact)
	s.writer.EnqueueAnalysis(artifact)

	metrics.RecordAnalysis("computed", time.Since(start).Seconds())
	return artifact, nil
}

// CachedAnalysis looks an artifact up in both cache tiers without calling
// the inference service.
func (s *AnalysisService) CachedAnalysis(ctx context.Context, entityID string) (*models.AnalysisArtifact, bool) {
	artifact, _, ok := s.cached(ctx, entityID)
	return artifact, ok
}

func (s *AnalysisService) cached(ctx context.Context, entityID string) (*models.AnalysisArtifact, string, bool) {
	if artifact, ok := s.cache.Get(entityID); ok {
		s.logger.LogCacheHit(entityID, "memory")
		return artifact, "memory", true
	}
	if artifact, ok := s.gateway.GetAnalysis(ctx, entityID); ok {
		s.cache.Set(entityID, artifact)
		s.logger.LogCacheHit(entityID, "remote")
		return artifact, "remote", true
	}
	return nil, "", false
}

// build repairs the raw answer into an artifact. The entity id always comes
// from the fixture, never from the producer.
func (s *AnalysisService) build(fixture models.FixtureRef, text string) (*models.AnalysisArtifact, error) {
	tree := repair.Repair(text)
	tree[repair.KeyEntityID] = fixture.ID

	artifact, err := models.ArtifactFromTree(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to build artifact for %s: %w", fixture.ID, err)
	}
	artifact.GeneratedAt = s.now().UTC()

	s.logger.LogRepair(fixture.ID, len(artifact.Predictions), len(artifact.Scenarios), artifact.Ratings != nil)
	return artifact, nil
}

func (s *AnalysisService) simulate(ctx context.Context, fixture models.FixtureRef, artifact *models.AnalysisArtifact) {
	if artifact.Ratings == nil || s.simulator == nil {
		return
	}
	start := time.Now()
	outcome, err := s.simulator.SimulateContext(ctx, *artifact.Ratings, fixture.Category, 0)
	if err != nil {
		s.logger.WithError(err).WithField("entity_id", fixture.ID).Warn("Simulation skipped")
		return
	}
	elapsed := time.Since(start)
	artifact.Outcome = &outcome

	metrics.RecordSimulation(string(fixture.Category), elapsed.Seconds())
	s.logger.LogSimulation(fixture.ID, string(fixture.Category), outcome.TotalTrials,
		outcome.HomeWinProbability, outcome.DrawProbability, outcome.AwayWinProbability, elapsed)
}
