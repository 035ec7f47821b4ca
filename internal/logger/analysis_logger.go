package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for the analysis pipeline.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogCacheHit logs an artifact served from a cache tier.
func (l *AnalysisLogger) LogCacheHit(entityID, tier string) {
	l.WithFields(logrus.Fields{
		"entity_id": entityID,
		"tier":      tier,
	}).Debug("Analysis served from cache")
}

// LogInferenceCall logs one completed inference request.
func (l *AnalysisLogger) LogInferenceCall(requestID, entityID string, latency time.Duration, err error) {
	entry := l.WithFields(logrus.Fields{
		"request_id": requestID,
		"entity_id":  entityID,
		"latency_ms": latency.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("Inference request failed")
		return
	}
	entry.Info("Inference request completed")
}

// LogRepair logs the shape of a repaired artifact.
func (l *AnalysisLogger) LogRepair(entityID string, predictions, scenarios int, hasRatings bool) {
	l.WithFields(logrus.Fields{
		"entity_id":   entityID,
		"predictions": predictions,
		"scenarios":   scenarios,
		"has_ratings": hasRatings,
	}).Debug("Inference response repaired")
}

// LogSimulation logs a simulation summary.
func (l *AnalysisLogger) LogSimulation(entityID, category string, trials int, homeWin, draw, awayWin float64, elapsed time.Duration) {
	l.WithFields(logrus.Fields{
		"entity_id":  entityID,
		"category":   category,
		"trials":     trials,
		"home_win":   homeWin,
		"draw":       draw,
		"away_win":   awayWin,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("Outcome simulation completed")
}
