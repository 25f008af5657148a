package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ga4dash/internal/config"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.in))
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "info", JSON: true, Stdout: &buf, ForceStdout: true})

	logger.Debug("hidden")
	logger.Info("summary served", slog.String("propertyId", "123"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "summary served", record["msg"])
	assert.Equal(t, "123", record["propertyId"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "debug", Stdout: &buf, ForceStdout: true})

	logger.Debug("cache miss", slog.String("key", "summary:abc"))

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "key=summary:abc")
}

func TestNewLoggerWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(Options{Level: "info", Directory: dir, MaxSizeMB: 1})

	logger.Info("written to file")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewLoggerWithoutSinksDiscards(t *testing.T) {
	logger := NewLogger(Options{})
	assert.NotPanics(t, func() { logger.Error("nobody listens") })
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Environment:      config.Test,
		LogLevel:         config.LogLevelWarn,
		LogsDirectory:    "logs",
		LogsMaxSizeInMb:  5,
		LogsMaxBackups:   2,
		LogsMaxAgeInDays: 7,
	}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "warn", opts.Level)
	assert.False(t, opts.JSON)
	assert.Empty(t, opts.Directory)
	assert.True(t, opts.ForceStdout)

	cfg.Environment = config.Production
	opts = OptionsFromConfig(cfg)
	assert.True(t, opts.JSON)
	assert.Equal(t, "logs", opts.Directory)
	assert.Equal(t, 5, opts.MaxSizeMB)
}
