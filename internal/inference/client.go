// Package inference calls the external forecast producer. Answers come back
// as raw text; turning them into structured data is the repair package's job.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/config"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/retry"
)

const (
	endpointAnalysis = "analysis"
	endpointFixtures = "fixtures"

	maxBodyBytes = 4 << 20
)

// envelopeKeys are the wrapper fields some producers put the text under.
var envelopeKeys = []string{"text", "content", "output", "response", "result"}

// AnalysisRequest is the payload sent for one fixture
type AnalysisRequest struct {
	EntityID     string          `json:"entity_id"`
	ParticipantA string          `json:"participant_a"`
	ParticipantB string          `json:"participant_b"`
	League       string          `json:"league,omitempty"`
	Category     models.Category `json:"category"`
	Date         string          `json:"date,omitempty"`
	Time         string          `json:"time,omitempty"`
}

// Client talks to the inference service over HTTP
type Client struct {
	http         *RateLimitedHTTPClient
	baseURL      string
	analysisPath string
	fixturesPath string
	apiKey       string
	policy       retry.Policy
	logger       *logrus.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg *config.InferenceConfig, policy retry.Policy, logger *logrus.Logger) *Client {
	transport := NewRateLimitedHTTPClient(TransportConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	})
	return &Client{
		http:         transport,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		analysisPath: cfg.AnalysisPath,
		fixturesPath: cfg.FixturesPath,
		apiKey:       cfg.APIKey,
		policy:       policy,
		logger:       logger,
	}
}

// FetchAnalysis asks for a forecast of the fixture and returns the raw answer.
// After the retry budget is spent the error wraps ErrUnavailable.
func (c *Client) FetchAnalysis(ctx context.Context, fixture models.FixtureRef) (string, error) {
	body, err := json.Marshal(AnalysisRequest{
		EntityID:     fixture.ID,
		ParticipantA: fixture.ParticipantA,
		ParticipantB: fixture.ParticipantB,
		League:       fixture.League,
		Category:     fixture.Category,
		Date:         fixture.ScheduledDate,
		Time:         fixture.ScheduledTime,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.fetch(ctx, endpointAnalysis, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.analysisPath, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// FetchFixtures asks for the fixture list of a civil day.
func (c *Client) FetchFixtures(ctx context.Context, category, day string) (string, error) {
	q := url.Values{}
	q.Set("date", day)
	if category != "" {
		q.Set("category", category)
	}
	target := c.baseURL + c.fixturesPath + "?" + q.Encode()

	return c.fetch(ctx, endpointFixtures, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
}

// Close releases idle connections
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) fetch(ctx context.Context, endpoint string, build func(context.Context) (*http.Request, error)) (string, error) {
	policy := c.policy
	policy.OnRetry = func(err error, wait time.Duration) {
		InferenceRetriesTotal.WithLabelValues(endpoint).Inc()
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"wait":     wait,
		}).WithError(err).Debug("Retrying inference call")
	}

	text, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		req, err := build(ctx)
		if err != nil {
			return "", retry.Permanent(err)
		}
		text, err := c.do(ctx, endpoint, req)
		if err != nil && !IsRetryable(err) {
			return "", retry.Permanent(err)
		}
		return text, err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return text, nil
}

func (c *Client) do(ctx context.Context, endpoint string, req *http.Request) (string, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	InferenceLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		InferenceRequestsTotal.WithLabelValues(endpoint, "network").Inc()
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		InferenceRequestsTotal.WithLabelValues(endpoint, "network").Inc()
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		InferenceRequestsTotal.WithLabelValues(endpoint, "status").Inc()
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
	}

	text := unwrapEnvelope(data)
	if strings.TrimSpace(text) == "" {
		InferenceRequestsTotal.WithLabelValues(endpoint, "empty").Inc()
		return "", ErrEmptyResponse
	}

	InferenceRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return text, nil
}

// unwrapEnvelope returns the text field of a {"text": "..."} style wrapper,
// or the body unchanged.
func unwrapEnvelope(data []byte) string {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil || len(env) == 0 {
		return string(data)
	}
	for _, key := range envelopeKeys {
		raw, ok := env[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}
	return string(data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// IsUnavailable reports whether err is an exhausted inference call.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
