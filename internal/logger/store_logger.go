package logger

import (
	"github.com/sirupsen/logrus"
)

// StoreLogger records remote store degradation: failed calls and dropped writes.
type StoreLogger struct {
	*logrus.Entry
}

// NewStoreLogger creates a new store logger for the named backend.
func NewStoreLogger(baseLogger *logrus.Logger, backend string) *StoreLogger {
	return &StoreLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "store",
			"backend":   backend,
		}),
	}
}

// LogCallFailed logs a failed remote call and whether it tripped the circuit.
func (l *StoreLogger) LogCallFailed(op, key string, transport bool, err error) {
	entry := l.WithFields(logrus.Fields{
		"op":        op,
		"key":       key,
		"transport": transport,
	}).WithError(err)
	if transport {
		entry.Warn("Remote store unreachable")
		return
	}
	entry.Warn("Remote store call failed, treating as miss")
}

// LogWriteDropped logs a background write that never reached the store.
func (l *StoreLogger) LogWriteDropped(writeID, kind, key, reason string) {
	l.WithFields(logrus.Fields{
		"write_id": writeID,
		"kind":     kind,
		"key":      key,
		"reason":   reason,
	}).Warn("Background write dropped")
}

// LogWriteFailed logs a background write error. It never propagates further.
func (l *StoreLogger) LogWriteFailed(writeID, kind, key string, err error) {
	l.WithFields(logrus.Fields{
		"write_id": writeID,
		"kind":     kind,
		"key":      key,
	}).WithError(err).Warn("Background write failed")
}
