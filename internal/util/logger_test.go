package util

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLoggerTextOutputFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutputs(LevelInfo, NewConsoleOutput(&buf, FormatText))

	logger.Debug("hidden")
	logger.Info("refresh done", F("device", "aa:bb"), F("intervals", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] refresh done")
	assert.Contains(t, out, "device=aa:bb intervals=3")
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutputs(LevelDebug, NewConsoleOutput(&buf, FormatJSON))

	logger.With(F("component", "driver")).Warn("fetch failed")

	var entry LogEntry
	require.NoError(t, sonic.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "fetch failed", entry.Message)
	assert.Equal(t, "driver", entry.Fields["component"])
}

func TestNewLoggerRequiresDestination(t *testing.T) {
	_, err := NewLogger(LoggerOptions{Level: "info"})
	assert.Error(t, err)

	logFile := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := NewLogger(LoggerOptions{Level: "info", File: logFile})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Close())
	assert.FileExists(t, logFile)
}

func TestGlobalHelpersAreSafeWithoutLogger(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		LogInfo("no logger")
		LogDebugf("value %d", 1)
		LogError("still fine")
	})

	var buf bytes.Buffer
	SetLogger(NewLoggerWithOutputs(LevelDebug, NewConsoleOutput(&buf, FormatText)))
	defer SetLogger(nil)

	LogWarnf("retry %d", 2)
	assert.Contains(t, buf.String(), "[WARN] retry 2")
}
