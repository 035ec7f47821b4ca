package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmind/internal/circuit"
)

type fakeStore struct {
	enabled bool
	pingErr error
	state   *circuit.State
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }
func (f *fakeStore) Enabled() bool              { return f.enabled }
func (f *fakeStore) Circuit() *circuit.State    { return f.state }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func ready(t *testing.T, s *Server) (int, ReadyResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "betmind", Version: "1.0.0"})
	mux := http.NewServeMux()
	s.Register(mux)

	for _, path := range []string{"/health", "/live"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "betmind", resp.Service)
	}
}

func TestReady_NotReadyUntilMarked(t *testing.T) {
	s := NewServer(Config{ServiceName: "betmind"})

	code, resp := ready(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "disabled", resp.Checks["store"])

	s.SetReady(true)
	code, resp = ready(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
}

func TestReady_StoreStates(t *testing.T) {
	log := quietLogger()

	online := &fakeStore{enabled: true, state: circuit.NewState("store", log)}
	s := NewServer(Config{ServiceName: "betmind", Store: online, Logger: log})
	s.SetReady(true)
	code, resp := ready(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Checks["store"])

	online.pingErr = errors.New("connection refused")
	code, resp = ready(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Contains(t, resp.Checks["store"], "connection refused")

	online.state.MarkOffline(errors.New("connection refused"))
	code, resp = ready(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Contains(t, resp.Checks["store"], "offline since")
}
