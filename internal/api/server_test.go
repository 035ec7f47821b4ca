package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmind/internal/health"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/service"
	"github.com/yourusername/betmind/internal/simulation"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) GetAnalysis(ctx context.Context, fixture models.FixtureRef, refresh bool) (*models.AnalysisArtifact, error) {
	args := m.Called(ctx, fixture, refresh)
	artifact, _ := args.Get(0).(*models.AnalysisArtifact)
	return artifact, args.Error(1)
}

func (m *MockAnalyzer) CachedAnalysis(ctx context.Context, entityID string) (*models.AnalysisArtifact, bool) {
	args := m.Called(ctx, entityID)
	artifact, _ := args.Get(0).(*models.AnalysisArtifact)
	return artifact, args.Bool(1)
}

type MockLister struct {
	mock.Mock
}

func (m *MockLister) ListFixtures(ctx context.Context, category string, refresh bool) ([]models.FixtureRef, error) {
	args := m.Called(ctx, category, refresh)
	fixtures, _ := args.Get(0).([]models.FixtureRef)
	return fixtures, args.Error(1)
}

func newTestServer(t *testing.T) (*Server, *MockAnalyzer, *MockLister) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	analyzer := &MockAnalyzer{}
	lister := &MockLister{}
	sim := simulation.NewSimulator(simulation.Config{Trials: 1000, Seed: 7})
	hs := health.NewServer(health.Config{ServiceName: "betmind", Logger: log})
	hs.SetReady(true)

	srv := NewServer(Config{Mode: gin.TestMode, MetricsPath: "/metrics"}, analyzer, lister, sim, hs, log)
	return srv, analyzer, lister
}

func performRaw(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func perform(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestListFixtures(t *testing.T) {
	srv, _, lister := newTestServer(t)
	fixtures := []models.FixtureRef{
		{ID: "lyon-vs-nice", Category: models.CategoryFootball, LifecycleState: models.StateActive},
	}
	lister.On("ListFixtures", mock.Anything, "football", true).Return(fixtures, nil)

	w := perform(srv, http.MethodGet, "/api/v1/fixtures?category=football&refresh=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp fixturesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "lyon-vs-nice", resp.Fixtures[0].ID)
	lister.AssertExpectations(t)
}

func TestListFixtures_DefaultsToAll(t *testing.T) {
	srv, _, lister := newTestServer(t)
	lister.On("ListFixtures", mock.Anything, models.CategoryAll, false).Return([]models.FixtureRef{}, nil)

	w := perform(srv, http.MethodGet, "/api/v1/fixtures", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	lister.AssertExpectations(t)
}

func TestListFixtures_UnknownCategory(t *testing.T) {
	srv, _, lister := newTestServer(t)

	w := perform(srv, http.MethodGet, "/api/v1/fixtures?category=cricket", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	lister.AssertNotCalled(t, "ListFixtures", mock.Anything, mock.Anything, mock.Anything)
}

func TestListFixtures_Unavailable(t *testing.T) {
	srv, _, lister := newTestServer(t)
	lister.On("ListFixtures", mock.Anything, models.CategoryAll, false).
		Return(nil, fmt.Errorf("%w: upstream down", service.ErrFixturesUnavailable))

	w := perform(srv, http.MethodGet, "/api/v1/fixtures", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreateAnalysis(t *testing.T) {
	srv, analyzer, _ := newTestServer(t)
	artifact := &models.AnalysisArtifact{EntityID: "lyon-vs-nice", Summary: "tight game"}
	analyzer.On("GetAnalysis", mock.Anything, mock.MatchedBy(func(f models.FixtureRef) bool {
		return f.ID == "lyon-vs-nice" && f.Category == models.CategoryFootball && f.ScheduledTime == "20:45"
	}), false).Return(artifact, nil)

	w := perform(srv, http.MethodPost, "/api/v1/analysis", AnalysisRequest{
		ParticipantA: "Lyon",
		ParticipantB: "Nice",
		League:       "Ligue 1",
		Sport:        "football",
		Date:         "2026-10-19",
		Time:         "20:45",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.AnalysisArtifact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "tight game", got.Summary)
	analyzer.AssertExpectations(t)
}

func TestCreateAnalysis_Validation(t *testing.T) {
	srv, analyzer, _ := newTestServer(t)

	w := perform(srv, http.MethodPost, "/api/v1/analysis", AnalysisRequest{League: "Ligue 1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	analyzer.AssertNotCalled(t, "GetAnalysis", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAnalysis_Unavailable(t *testing.T) {
	srv, analyzer, _ := newTestServer(t)
	analyzer.On("GetAnalysis", mock.Anything, mock.Anything, true).
		Return(nil, fmt.Errorf("%w: retries exhausted", service.ErrAnalysisUnavailable))

	w := perform(srv, http.MethodPost, "/api/v1/analysis", AnalysisRequest{
		ParticipantA: "Lyon", ParticipantB: "Nice", Refresh: true,
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetAnalysis(t *testing.T) {
	srv, analyzer, _ := newTestServer(t)
	analyzer.On("CachedAnalysis", mock.Anything, "lyon-vs-nice").
		Return(&models.AnalysisArtifact{EntityID: "lyon-vs-nice"}, true)
	analyzer.On("CachedAnalysis", mock.Anything, "nobody-vs-none").Return(nil, false)

	w := perform(srv, http.MethodGet, "/api/v1/analysis/lyon-vs-nice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(srv, http.MethodGet, "/api/v1/analysis/nobody-vs-none", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimulate(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := perform(srv, http.MethodPost, "/api/v1/simulate", SimulateRequest{
		Ratings:  map[string]any{"attack_a": 80, "defense_a": 70, "attack_b": 40, "defense_b": 45},
		Category: "football",
		Trials:   500,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var out models.OutcomeDistribution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 500, out.TotalTrials)
	assert.InDelta(t, 100, out.HomeWinProbability+out.AwayWinProbability+out.DrawProbability, 0.5)
}

func TestSimulate_MissingRatingsAreNeutral(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for name, body := range map[string]string{
		"empty object":  `{"ratings": {}, "category": "football", "trials": 50000}`,
		"no ratings":    `{"category": "football", "trials": 50000}`,
		"partial block": `{"ratings": {"tempo": 50}, "category": "football", "trials": 50000}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := performRaw(srv, http.MethodPost, "/api/v1/simulate", body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var out models.OutcomeDistribution
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.InDelta(t, out.HomeWinProbability, out.AwayWinProbability, 3.0)
			assert.InDelta(t, out.ProjectedScore.A, out.ProjectedScore.B, 1)
		})
	}
}

func TestSimulate_CoercesUnreadableRatings(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := performRaw(srv, http.MethodPost, "/api/v1/simulate",
		`{"ratings": {"attack_a": "abc", "defense_a": "70", "attack_b": null, "defense_b": 45}, "trials": 200}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out models.OutcomeDistribution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 200, out.TotalTrials)
}

func TestSimulate_TooManyTrials(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := perform(srv, http.MethodPost, "/api/v1/simulate", SimulateRequest{Trials: maxTrials + 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetricsMounted(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/health", "/live", "/ready", "/metrics"} {
		w := perform(srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
