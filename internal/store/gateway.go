package store

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/circuit"
	"github.com/yourusername/betmind/internal/logger"
	"github.com/yourusername/betmind/internal/metrics"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/retry"
)

// Gateway fronts a Backend. Reads never fail: any problem is a miss. Writes
// return an error only for the async writer to log.
type Gateway struct {
	backend Backend
	circuit *circuit.State
	policy  retry.Policy
	log     *logger.StoreLogger
}

// NewGateway creates a gateway. A nil backend behaves like a store that is
// always empty and discards writes.
func NewGateway(backend Backend, state *circuit.State, policy retry.Policy, log *logrus.Logger) *Gateway {
	name := "none"
	if backend != nil {
		name = backend.Name()
	}
	if state == nil {
		state = circuit.NewState(name, log)
	}
	state.OnOffline(func(error) {
		metrics.RecordStoreOffline()
	})
	return &Gateway{
		backend: backend,
		circuit: state,
		policy:  policy,
		log:     logger.NewStoreLogger(log, name),
	}
}

// Circuit exposes the circuit state for health reporting.
func (g *Gateway) Circuit() *circuit.State {
	return g.circuit
}

// Enabled reports whether a backend is configured.
func (g *Gateway) Enabled() bool {
	return g.backend != nil
}

// IsOffline reports whether the circuit has tripped.
func (g *Gateway) IsOffline() bool {
	return g.circuit.IsOffline()
}

// GetAnalysis returns the stored artifact, or false on a miss or any failure.
func (g *Gateway) GetAnalysis(ctx context.Context, entityID string) (*models.AnalysisArtifact, bool) {
	if g.backend == nil {
		return nil, false
	}
	a, err := call(ctx, g, "get_analysis", entityID, func(ctx context.Context) (*models.AnalysisArtifact, error) {
		return g.backend.GetAnalysis(ctx, entityID)
	})
	if err != nil || a == nil {
		return nil, false
	}
	return a, true
}

// PutAnalysis upserts the artifact by entity id.
func (g *Gateway) PutAnalysis(ctx context.Context, artifact *models.AnalysisArtifact) error {
	if g.backend == nil {
		return ErrOffline
	}
	_, err := call(ctx, g, "put_analysis", artifact.EntityID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.backend.PutAnalysis(ctx, artifact)
	})
	return err
}

// GetFixtures returns the fixtures cached for day, or false when there are
// none or the store failed.
func (g *Gateway) GetFixtures(ctx context.Context, day string) ([]models.FixtureRef, bool) {
	if g.backend == nil {
		return nil, false
	}
	fx, err := call(ctx, g, "get_fixtures", day, func(ctx context.Context) ([]models.FixtureRef, error) {
		return g.backend.GetFixtures(ctx, day)
	})
	if err != nil || len(fx) == 0 {
		return nil, false
	}
	return fx, true
}

// PutFixtures upserts the fixtures for day.
func (g *Gateway) PutFixtures(ctx context.Context, day string, fixtures []models.FixtureRef) error {
	if g.backend == nil {
		return ErrOffline
	}
	_, err := call(ctx, g, "put_fixtures", day, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.backend.PutFixtures(ctx, day, fixtures)
	})
	return err
}

// Ping checks the backend without touching the circuit.
func (g *Gateway) Ping(ctx context.Context) error {
	if g.backend == nil {
		return ErrOffline
	}
	if g.circuit.IsOffline() {
		return ErrOffline
	}
	return g.backend.Ping(ctx)
}

// Close closes the backend.
func (g *Gateway) Close() error {
	if g.backend == nil {
		return nil
	}
	return g.backend.Close()
}

// call retries transport errors with the gateway policy and trips the circuit
// once they are exhausted. Misses and answered errors are not retried.
func call[T any](ctx context.Context, g *Gateway, op, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if g.circuit.IsOffline() {
		return zero, ErrOffline
	}

	v, err := retry.Do(ctx, g.policy, func(ctx context.Context) (T, error) {
		if g.circuit.IsOffline() {
			return zero, retry.Permanent(ErrOffline)
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, models.ErrNotFound) || !IsTransportError(err) {
			return zero, retry.Permanent(err)
		}
		return zero, err
	})
	if err == nil {
		return v, nil
	}

	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, ErrOffline):
	case ctx.Err() != nil:
		// the caller gave up; says nothing about the store
	case IsTransportError(err):
		metrics.RecordStoreError(op, true)
		g.log.LogCallFailed(op, key, true, err)
		g.circuit.MarkOffline(err)
	default:
		metrics.RecordStoreError(op, false)
		g.log.LogCallFailed(op, key, false, err)
	}
	return zero, err
}

// DefaultPolicy is the store retry policy used when none is configured.
func DefaultPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:    2,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       time.Second,
		AttemptTimeout: 5 * time.Second,
	}
}
