package inference

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable means the inference service gave no usable answer after
	// every retry.
	ErrUnavailable = errors.New("inference service unavailable")

	// ErrEmptyResponse indicates a 2xx response with no content
	ErrEmptyResponse = errors.New("empty response from inference service")
)

// StatusError is a non-2xx answer from the inference service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference request failed with status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether a failed call may succeed on retry. Transport
// failures are; client errors other than 408 and 429 are not.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return err != nil
}
