package inference

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InferenceRequestsTotal tracks inference calls by endpoint and result
	InferenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betmind_inference_requests_total",
			Help: "Total number of inference service calls",
		},
		[]string{"endpoint", "result"}, // ok, status, network, empty
	)

	// InferenceLatency tracks single-attempt latency
	InferenceLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betmind_inference_latency_seconds",
			Help:    "Inference call latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"endpoint"},
	)

	// InferenceRetriesTotal tracks retried attempts
	InferenceRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betmind_inference_retries_total",
			Help: "Total number of retried inference attempts",
		},
		[]string{"endpoint"},
	)
)
