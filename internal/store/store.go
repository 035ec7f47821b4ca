// Package store is the remote cache of fixtures and analysis artifacts. The
// Gateway guards a Backend with a one-way circuit so an unreachable store
// degrades to cache misses and dropped writes instead of errors.
package store

import (
	"context"
	"errors"

	"github.com/yourusername/betmind/internal/models"
)

// ErrOffline is returned for calls skipped because the circuit is open.
var ErrOffline = errors.New("remote store offline")

// Backend is a remote store transport. Misses are reported as
// models.ErrNotFound.
type Backend interface {
	Name() string
	GetAnalysis(ctx context.Context, entityID string) (*models.AnalysisArtifact, error)
	PutAnalysis(ctx context.Context, artifact *models.AnalysisArtifact) error
	// GetFixtures returns every fixture cached for the civil day (YYYY-MM-DD).
	GetFixtures(ctx context.Context, day string) ([]models.FixtureRef, error)
	PutFixtures(ctx context.Context, day string, fixtures []models.FixtureRef) error
	Ping(ctx context.Context) error
	Close() error
}
