package inference

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// TransportConfig holds configuration for the rate limited HTTP transport
type TransportConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
}

// RateLimitedHTTPClient wraps retryablehttp.Client with a token bucket. Its
// own retries are disabled; callers retry through the retry package so every
// attempt shares one backoff schedule.
type RateLimitedHTTPClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg TransportConfig) *RateLimitedHTTPClient {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	// hand every response back; status handling is the caller's
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &RateLimitedHTTPClient{
		client:  retryClient,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Do executes an HTTP request once the rate limiter allows it
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	rreq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return c.client.Do(rreq)
}

// Close closes idle connections
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}
