// Package metrics provides the centralized Prometheus registry for BetMind.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "betmind"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AnalysisRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_requests_total",
		Help:      "Analysis requests by outcome (memory, remote, computed, failed)",
	}, []string{"outcome"})
	FixtureListingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixture_listings_total",
		Help:      "Fixture listings by source (remote, inference, empty)",
	}, []string{"source"})
	FixtureRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixture_refresh_total",
		Help:      "Scheduled fixture refresh runs by status",
	}, []string{"status"})
	StoreErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Remote store errors by operation and class (transport, other)",
	}, []string{"op", "class"})
	StoreWritesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_writes_dropped_total",
		Help:      "Background writes that never reached the remote store",
	}, []string{"reason"})
	SimulationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulations_total",
		Help:      "Outcome simulations by category",
	}, []string{"category"})
)

// Gauge metrics
var (
	StoreOffline = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_offline",
		Help:      "1 once the remote store circuit has gone offline",
	})
	StoreWriteQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_write_queue_depth",
		Help:      "Pending background writes",
	})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of outcome simulations in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end analysis request duration in seconds",
		Buckets:   []float64{0.001, 0.01, 0.1, 1, 5, 15, 30, 60, 120},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(AnalysisRequestsTotal)
		registry.MustRegister(FixtureListingsTotal)
		registry.MustRegister(FixtureRefreshTotal)
		registry.MustRegister(StoreErrorsTotal)
		registry.MustRegister(StoreWritesDroppedTotal)
		registry.MustRegister(SimulationsTotal)

		registry.MustRegister(StoreOffline)
		registry.MustRegister(StoreWriteQueueDepth)

		registry.MustRegister(SimulationDuration)
		registry.MustRegister(AnalysisDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler serves the BetMind registry together with the default registry,
// which holds the promauto metrics of the inference client and cache.
func Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)
}

// RecordAnalysis records one analysis request outcome and its duration.
func RecordAnalysis(outcome string, durationSeconds float64) {
	AnalysisRequestsTotal.WithLabelValues(outcome).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordFixtureListing records where a fixture listing came from.
func RecordFixtureListing(source string) {
	FixtureListingsTotal.WithLabelValues(source).Inc()
}

// RecordFixtureRefresh records a scheduled refresh run.
func RecordFixtureRefresh(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	FixtureRefreshTotal.WithLabelValues(status).Inc()
}

// RecordStoreError records a failed remote store call.
func RecordStoreError(op string, transport bool) {
	class := "other"
	if transport {
		class = "transport"
	}
	StoreErrorsTotal.WithLabelValues(op, class).Inc()
}

// RecordStoreOffline flips the offline gauge.
func RecordStoreOffline() {
	StoreOffline.Set(1)
}

// RecordWriteDropped records a dropped background write.
func RecordWriteDropped(reason string) {
	StoreWritesDroppedTotal.WithLabelValues(reason).Inc()
}

// UpdateWriteQueueDepth sets the pending write gauge.
func UpdateWriteQueueDepth(depth int) {
	StoreWriteQueueDepth.Set(float64(depth))
}

// RecordSimulation records one simulation run.
func RecordSimulation(category string, durationSeconds float64) {
	SimulationsTotal.WithLabelValues(category).Inc()
	SimulationDuration.Observe(durationSeconds)
}
