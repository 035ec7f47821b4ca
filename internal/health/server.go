// Package health provides the liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/circuit"
)

// StorePinger checks the remote store.
type StorePinger interface {
	Ping(ctx context.Context) error
	Enabled() bool
	Circuit() *circuit.State
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Config holds the configuration for the health handlers.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Logger      *logrus.Logger
	Store       StorePinger
}

// Server serves /health, /live and /ready.
type Server struct {
	serviceName string
	version     string
	commit      string
	logger      *logrus.Logger
	store       StorePinger
	mu          sync.RWMutex
	ready       bool
}

// NewServer creates the health handlers. The server starts not ready.
func NewServer(cfg Config) *Server {
	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		commit:      cfg.Commit,
		logger:      cfg.Logger,
		store:       cfg.Store,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Register mounts the endpoints on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/ready", s.HandleReady)
	mux.HandleFunc("/live", s.HandleLive)
}

// HandleHealth reports basic liveness with build information.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.write(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Commit:    s.commit,
	})
}

// HandleLive handles the kubernetes liveness probe.
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	s.write(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.serviceName,
	})
}

// HandleReady reports readiness. An unreachable store degrades the service
// but does not make it unready: analyses are still computed.
func (s *Server) HandleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	ready := s.IsReady()
	degraded := false

	if ready {
		checks["service"] = "ok"
	} else {
		checks["service"] = "not_ready"
	}

	switch {
	case s.store == nil || !s.store.Enabled():
		checks["store"] = "disabled"
	case s.store.Circuit().IsOffline():
		checks["store"] = "offline since " + s.store.Circuit().TrippedAt().UTC().Format(time.RFC3339)
		degraded = true
	default:
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = "error: " + err.Error()
			degraded = true
		} else {
			checks["store"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}
	status := http.StatusOK
	switch {
	case !ready:
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	case degraded:
		response.Status = "degraded"
	default:
		response.Status = "ok"
	}
	s.write(w, status, response)
}

func (s *Server) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && s.logger != nil {
		s.logger.WithError(err).Debug("Failed to write health response")
	}
}
