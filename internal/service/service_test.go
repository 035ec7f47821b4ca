package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmind/internal/cache"
	"github.com/yourusername/betmind/internal/circuit"
	"github.com/yourusername/betmind/internal/inference"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/retry"
	"github.com/yourusername/betmind/internal/schedule"
	"github.com/yourusername/betmind/internal/simulation"
	"github.com/yourusername/betmind/internal/store"
)

// MockSource mocks the inference service
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchAnalysis(ctx context.Context, fixture models.FixtureRef) (string, error) {
	args := m.Called(ctx, fixture)
	return args.String(0), args.Error(1)
}

func (m *MockSource) FetchFixtures(ctx context.Context, category, day string) (string, error) {
	args := m.Called(ctx, category, day)
	return args.String(0), args.Error(1)
}

// unreachableBackend fails every call like a store behind a dead network.
type unreachableBackend struct {
	*store.MemoryBackend
}

func (unreachableBackend) GetAnalysis(context.Context, string) (*models.AnalysisArtifact, error) {
	return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
}

func (unreachableBackend) GetFixtures(context.Context, string) ([]models.FixtureRef, error) {
	return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
}

type harness struct {
	source   *MockSource
	backend  store.Backend
	gateway  *store.Gateway
	writer   *store.Writer
	analysis *AnalysisService
	fixtures *FixtureService
}

// 18:00 in Paris
var testNow = time.Date(2026, time.October, 19, 16, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, backend store.Backend) *harness {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	gateway := store.NewGateway(backend, circuit.NewState("test", log),
		retry.Policy{MaxAttempts: 1, InitialDelay: time.Millisecond}, log)
	writer := store.NewWriter(gateway, 16, 1, time.Second, log)
	writer.Start()
	t.Cleanup(writer.Stop)

	gate, err := schedule.NewGate(schedule.DefaultConfig())
	require.NoError(t, err)

	simCfg := simulation.DefaultConfig()
	simCfg.Seed = 42
	simCfg.Trials = 2000

	source := &MockSource{}
	analysis := NewAnalysisService(source, cache.NewArtifactCache(time.Hour, 100), gateway, writer,
		simulation.NewSimulator(simCfg), log)
	analysis.now = func() time.Time { return testNow }

	fixtures := NewFixtureService(source, cache.NewFixtureCache(time.Hour, 10), gateway, writer, gate, log)
	fixtures.now = func() time.Time { return testNow }

	return &harness{
		source:   source,
		backend:  backend,
		gateway:  gateway,
		writer:   writer,
		analysis: analysis,
		fixtures: fixtures,
	}
}

const analysisResponse = "Here is the analysis:\n```json\n" + `{
  "summary": "PSG control the tempo at home",
  "keyFactors": ["Home form", "home form ", {"factor": "Set pieces"}],
  "predictions": [
    {"betType": "1X2", "selection": "PSG", "odds": "1,85", "confidence": "high", "probability": 60, "units": 2}
  ],
  "scenarios": ["Early PSG goal then comfortable win", "Red card -> draw"],
  "ratings": {"attackA": 80, "defenseA": 70, "attackB": 40, "defenseB": 30, "tempo": 50}
}` + "\n```"

var psgOM = models.FixtureRef{
	ParticipantA:  "Paris Saint-Germain",
	ParticipantB:  "Olympique de Marseille",
	League:        "Ligue 1",
	ScheduledDate: "19/10",
	ScheduledTime: "21:00",
}

func TestGetAnalysis_ComputesAndCaches(t *testing.T) {
	h := newHarness(t, store.NewMemoryBackend())
	ctx := context.Background()

	h.source.On("FetchAnalysis", mock.Anything, mock.MatchedBy(func(f models.FixtureRef) bool {
		return f.ID == "parissaintgermain-vs-olympiquedemarseille"
	})).Return(analysisResponse, nil).Once()

	a, err := h.analysis.GetAnalysis(ctx, psgOM, false)
	require.NoError(t, err)

	assert.Equal(t, "parissaintgermain-vs-olympiquedemarseille", a.EntityID)
	assert.Equal(t, "PSG control the tempo at home", a.Summary)
	assert.Equal(t, []string{"Home form", "Set pieces"}, a.KeyFactors)
	assert.Equal(t, "N/A", a.Weather)
	assert.NotNil(t, a.Injuries)
	assert.Equal(t, testNow, a.GeneratedAt)

	require.Len(t, a.Predictions, 1)
	p := a.Predictions[0]
	assert.Equal(t, 1.85, p.Odds)
	assert.Equal(t, 50.0, p.Confidence)
	assert.Equal(t, 2.0, p.StakeUnits)
	assert.InDelta(t, 0.11, p.Edge, 1e-9)

	require.Len(t, a.Scenarios, 2)
	assert.Equal(t, "Early PSG goal", a.Scenarios[0].Condition)
	assert.Equal(t, "comfortable win", a.Scenarios[0].Outcome)
	assert.Equal(t, "Medium", a.Scenarios[0].Likelihood)
	assert.Equal(t, "Red card", a.Scenarios[1].Condition)
	assert.Equal(t, "draw", a.Scenarios[1].Outcome)

	require.NotNil(t, a.Ratings)
	require.NotNil(t, a.Outcome)
	assert.Equal(t, 2000, a.Outcome.TotalTrials)
	assert.GreaterOrEqual(t, a.Outcome.HomeWinProbability, 70.0)

	// second call is served from memory
	again, err := h.analysis.GetAnalysis(ctx, psgOM, false)
	require.NoError(t, err)
	assert.Same(t, a, again)
	h.source.AssertNumberOfCalls(t, "FetchAnalysis", 1)

	// and the artifact reached the remote store
	h.writer.Stop()
	stored, err := h.backend.GetAnalysis(ctx, a.EntityID)
	require.NoError(t, err)
	assert.Equal(t, a.Summary, stored.Summary)
	require.NotNil(t, stored.Outcome)
}

func TestGetAnalysis_RemoteHit(t *testing.T) {
	backend := store.NewMemoryBackend()
	require.NoError(t, backend.PutAnalysis(context.Background(), &models.AnalysisArtifact{
		EntityID: "parissaintgermain-vs-olympiquedemarseille",
		Summary:  "from remote",
	}))
	h := newHarness(t, backend)

	a, err := h.analysis.GetAnalysis(context.Background(), psgOM, false)
	require.NoError(t, err)
	assert.Equal(t, "from remote", a.Summary)
	h.source.AssertNotCalled(t, "FetchAnalysis", mock.Anything, mock.Anything)

	cached, ok := h.analysis.CachedAnalysis(context.Background(), a.EntityID)
	require.True(t, ok)
	assert.Same(t, a, cached)
}

func TestGetAnalysis_RefreshOverwrites(t *testing.T) {
	h := newHarness(t, store.NewMemoryBackend())
	ctx := context.Background()

	h.source.On("FetchAnalysis", mock.Anything, mock.Anything).Return(`{"summary": "first"}`, nil).Once()
	h.source.On("FetchAnalysis", mock.Anything, mock.Anything).Return(`{"summary": "second"}`, nil).Once()

	first, err := h.analysis.GetAnalysis(ctx, psgOM, false)
	require.NoError(t, err)
	assert.Equal(t, "first", first.Summary)
	assert.Nil(t, first.Outcome, "no ratings, no simulation")

	second, err := h.analysis.GetAnalysis(ctx, psgOM, true)
	require.NoError(t, err)
	assert.Equal(t, "second", second.Summary)

	cached, err := h.analysis.GetAnalysis(ctx, psgOM, false)
	require.NoError(t, err)
	assert.Equal(t, "second", cached.Summary)

	h.writer.Stop()
	stored, err := h.backend.GetAnalysis(ctx, first.EntityID)
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Summary)
	h.source.AssertNumberOfCalls(t, "FetchAnalysis", 2)
}

func TestGetAnalysis_InferenceExhausted(t *testing.T) {
	h := newHarness(t, store.NewMemoryBackend())
	cause := fmt.Errorf("%w: %w", inference.ErrUnavailable, &inference.StatusError{StatusCode: 503})
	h.source.On("FetchAnalysis", mock.Anything, mock.Anything).Return("", cause)

	a, err := h.analysis.GetAnalysis(context.Background(), psgOM, false)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
	assert.ErrorIs(t, err, inference.ErrUnavailable)

	_, ok := h.analysis.CachedAnalysis(context.Background(), "parissaintgermain-vs-olympiquedemarseille")
	assert.False(t, ok)
}

func TestGetAnalysis_GarbageStillProducesArtifact(t *testing.T) {
	h := newHarness(t, store.NewMemoryBackend())
	h.source.On("FetchAnalysis", mock.Anything, mock.Anything).Return("I cannot answer that right now.", nil)

	a, err := h.analysis.GetAnalysis(context.Background(), psgOM, false)
	require.NoError(t, err)
	assert.Equal(t, "N/A", a.Summary)
	assert.Empty(t, a.Predictions)
	assert.NotNil(t, a.Predictions)
	assert.Nil(t, a.Ratings)
}

func TestGetAnalysis_SurvivesUnreachableStore(t *testing.T) {
	h := newHarness(t, unreachableBackend{store.NewMemoryBackend()})
	h.source.On("FetchAnalysis", mock.Anything, mock.Anything).Return(`{"summary": "ok"}`, nil).Once()

	a, err := h.analysis.GetAnalysis(context.Background(), psgOM, false)
	require.NoError(t, err)
	assert.Equal(t, "ok", a.Summary)
	assert.True(t, h.gateway.IsOffline())

	// subsequent writes are dropped rather than queued
	assert.False(t, h.writer.EnqueueAnalysis(a))
}

const fixturesResponse = "```json\n" + `{"matches": [
  {"homeTeam": "PSG", "awayTeam": "OM", "league": "Ligue 1", "date": "19/10", "time": "21h00", "quickOdds": "1,8"},
  {"homeTeam": "Lakers", "awayTeam": "Celtics", "league": "NBA", "date": "20/10", "time": "02:00", "quickOdds": 3.1},
  {"homeTeam": "Lyon", "awayTeam": "Nice", "league": "Ligue 1", "date": "19/10", "time": "17:00"},
  {"homeTeam": "Lille", "awayTeam": "Lens", "league": "Ligue 1", "date": "19/10", "time": "13:00"},
  {"homeTeam": "PSG", "awayTeam": "OM", "league": "Ligue 1", "date": "19/10", "time": "21:00"},
  {"league": "Nameless"}
]}` + "\n```"

func ids(fixtures []models.FixtureRef) []string {
	out := make([]string, len(fixtures))
	for i, f := range fixtures {
		out[i] = f.ID
	}
	return out
}

func TestListFixtures_FromInference(t *testing.T) {
	h := newHarness(t, store.NewMemoryBackend())
	ctx := context.Background()
	h.source.On("FetchFixtures", mock.Anything, models.CategoryAll, "2026-10-19").Return(fixturesResponse, nil).Once()

	fixtures, err := h.fixtures.ListFixtures(ctx, models.CategoryAll, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"lyon-vs-nice", "psg-vs-om", "lakers-vs-celtics"}, ids(fixtures))

	assert.Equal(t, models.StateActive, fixtures[0].LifecycleState)
	assert.Equal(t, models.StateScheduled, fixtures[1].LifecycleState)
	assert.Equal(t, "21:00", fixtures[1].ScheduledTime)
	assert.True(t, fixtures[1].Trending)
	assert.Equal(t, 1.8, fixtures[1].QuickOdds)
	assert.Equal(t, models.CategoryBasketball, fixtures[2].Category)
	assert.False(t, fixtures[2].Trending)

	// served from memory afterwards
	basketball, err := h.fixtures.ListFixtures(ctx, string(models.CategoryBasketball), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"lakers-vs-celtics"}, ids(basketball))
	h.source.AssertNumberOfCalls(t, "FetchFixtures", 1)

	// every fixture of the day is stored, expired ones included
	h.writer.Stop()
	stored, err := h.backend.GetFixtures(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestListFixtures_RemoteHit(t *testing.T) {
	backend := store.NewMemoryBackend()
	require.NoError(t, backend.PutFixtures(context.Background(), "2026-10-19", []models.FixtureRef{
		NewFixture("Real Madrid", "Barça", "La Liga", "", "19/10", "20:00", 0, false),
		NewFixture("Old", "Match", "La Liga", "", "18/10", "20:00", 0, false),
	}))
	h := newHarness(t, backend)

	fixtures, err := h.fixtures.ListFixtures(context.Background(), "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"realmadrid-vs-barca"}, ids(fixtures))
	h.source.AssertNotCalled(t, "FetchFixtures", mock.Anything, mock.Anything, mock.Anything)
}

func TestListFixtures_RefreshBypassesCache(t *testing.T) {
	h := newHarness(t, store.NewMemoryBackend())
	h.source.On("FetchFixtures", mock.Anything, mock.Anything, mock.Anything).Return(fixturesResponse, nil).Twice()

	_, err := h.fixtures.ListFixtures(context.Background(), models.CategoryAll, false)
	require.NoError(t, err)
	n, err := h.fixtures.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	h.source.AssertNumberOfCalls(t, "FetchFixtures", 2)
}

func TestListFixtures_InferenceDownAndNothingCached(t *testing.T) {
	h := newHarness(t, unreachableBackend{store.NewMemoryBackend()})
	h.source.On("FetchFixtures", mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("%w: timeout", inference.ErrUnavailable))

	fixtures, err := h.fixtures.ListFixtures(context.Background(), models.CategoryAll, false)
	assert.Nil(t, fixtures)
	assert.ErrorIs(t, err, ErrFixturesUnavailable)
	assert.ErrorIs(t, err, inference.ErrUnavailable)
	assert.True(t, h.gateway.IsOffline())
}

func TestListFixtures_EmptyAnswer(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchFixtures", mock.Anything, mock.Anything, mock.Anything).Return("no games today", nil)

	fixtures, err := h.fixtures.ListFixtures(context.Background(), models.CategoryAll, false)
	require.NoError(t, err)
	assert.Empty(t, fixtures)
}

func TestNewFixture(t *testing.T) {
	f := NewFixture("Élan Chalon", "", "Betclic Élite", "Basketball", "19/10", "20h30", 2.2, false)
	assert.Equal(t, "elanchalon-vs-unknown-b", f.ID)
	assert.Equal(t, models.CategoryBasketball, f.Category)
	assert.Equal(t, "20:30", f.ScheduledTime)
	assert.True(t, f.Trending)
}
