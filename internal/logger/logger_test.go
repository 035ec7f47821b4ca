package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("nonsense", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = NewLogger("warn", "staging")
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestAnalysisLoggerInferenceCall(t *testing.T) {
	log, buf := setupTestLogger()
	l := NewAnalysisLogger(log)

	l.LogInferenceCall("req-1", "psg-vs-om", 1500*time.Millisecond, nil)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "analysis", entry["component"])
	assert.Equal(t, "psg-vs-om", entry["entity_id"])
	assert.Equal(t, float64(1500), entry["latency_ms"])
	assert.Equal(t, "info", entry["level"])
}

func TestAnalysisLoggerInferenceFailure(t *testing.T) {
	log, buf := setupTestLogger()
	NewAnalysisLogger(log).LogInferenceCall("req-2", "a-vs-b", time.Second, errors.New("503"))

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "503", entry["error"])
}

func TestAnalysisLoggerSimulation(t *testing.T) {
	log, buf := setupTestLogger()
	NewAnalysisLogger(log).LogSimulation("a-vs-b", "football", 10000, 61.2, 20.1, 18.7, 3*time.Millisecond)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, float64(10000), entry["trials"])
	assert.Equal(t, 61.2, entry["home_win"])
}

func TestStoreLoggerCallFailed(t *testing.T) {
	log, buf := setupTestLogger()
	l := NewStoreLogger(log, "postgres")

	l.LogCallFailed("get_analysis", "a-vs-b", true, errors.New("connection refused"))

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "postgres", entry["backend"])
	assert.Equal(t, true, entry["transport"])
	assert.Equal(t, "Remote store unreachable", entry["msg"])
}

func TestStoreLoggerWriteDropped(t *testing.T) {
	log, buf := setupTestLogger()
	NewStoreLogger(log, "redis").LogWriteDropped("w-1", "analysis", "a-vs-b", "queue full")

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "queue full", entry["reason"])
	assert.Equal(t, "warning", entry["level"])
}
