package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStandardLogger(log.New(&buf, "", 0), Debug, "[test]")

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		logger.Info("info message", "key1", "value1", "key2", 123)
		output := buf.String()
		assert.Contains(t, output, "[test] [INFO] info message")
		assert.Contains(t, output, "key1=value1")
		assert.Contains(t, output, "key2=123")
	})

	t.Run("Debug", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug message")
		assert.Contains(t, buf.String(), "[DEBUG] debug message")
	})

	t.Run("OddArgs", func(t *testing.T) {
		buf.Reset()
		logger.Warn("odd", "lonely")
		assert.Contains(t, buf.String(), "lonely=(no value)")
	})
}

func TestStandardLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	warnLogger := NewStandardLogger(log.New(&buf, "", 0), Warn, "[test]")

	warnLogger.Info("info message")
	assert.Zero(t, buf.Len(), "info must be filtered at warn level")

	warnLogger.Warn("warn message")
	assert.Contains(t, buf.String(), "[WARN] warn message")

	buf.Reset()
	warnLogger.LogMode(Silent).Error("error message")
	assert.Zero(t, buf.Len(), "silent logger must not write")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   Debug,
		"INFO":    Info,
		"warning": Warn,
		"error":   Error,
		"off":     Silent,
		"bogus":   Info,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
	assert.Equal(t, "warn", Warn.String())
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, Info)

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Info("sent", "status", 200)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sent", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 200, entry["status"])
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.LogMode(Debug).Error("nothing", "k", "v")
	})
}
