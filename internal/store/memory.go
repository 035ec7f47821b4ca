package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/yourusername/betmind/internal/models"
)

// MemoryBackend keeps everything in process. It is used for local runs and
// as the reference backend in tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	analyses map[string][]byte
	fixtures map[string]map[string]models.FixtureRef
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		analyses: make(map[string][]byte),
		fixtures: make(map[string]map[string]models.FixtureRef),
	}
}

func (m *MemoryBackend) Name() string { return "memory" }

// GetAnalysis returns a copy of the stored artifact.
func (m *MemoryBackend) GetAnalysis(_ context.Context, entityID string) (*models.AnalysisArtifact, error) {
	m.mu.RLock()
	data, ok := m.analyses[entityID]
	m.mu.RUnlock()
	if !ok {
		return nil, models.ErrNotFound
	}
	return models.DecodeArtifact(data)
}

// PutAnalysis stores the artifact, replacing any previous one.
func (m *MemoryBackend) PutAnalysis(_ context.Context, artifact *models.AnalysisArtifact) error {
	if artifact.EntityID == "" {
		return models.ErrInvalidID
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.analyses[artifact.EntityID] = data
	m.mu.Unlock()
	return nil
}

// GetFixtures returns the day's fixtures in no particular order.
func (m *MemoryBackend) GetFixtures(_ context.Context, day string) ([]models.FixtureRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byID, ok := m.fixtures[day]
	if !ok || len(byID) == 0 {
		return nil, models.ErrNotFound
	}
	out := make([]models.FixtureRef, 0, len(byID))
	for _, f := range byID {
		out = append(out, f)
	}
	return out, nil
}

// PutFixtures upserts fixtures by id.
func (m *MemoryBackend) PutFixtures(_ context.Context, day string, fixtures []models.FixtureRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.fixtures[day]
	if !ok {
		byID = make(map[string]models.FixtureRef)
		m.fixtures[day] = byID
	}
	for _, f := range fixtures {
		if f.ID == "" {
			return models.ErrInvalidID
		}
		byID[f.ID] = f
	}
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }
