package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" Info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelError},
		{"", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input, slog.LevelError))
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Module:  "scd",
		Version: "1.2.3",
		Level:   "info",
		Format:  "json",
		Writer:  &buf,
	})

	logger.Debug("hidden")
	logger.Info("processing", "path", "VERSION")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "processing", record["msg"])
	assert.Equal(t, "scd", record["module"])
	assert.Equal(t, "1.2.3", record["version"])
	assert.Equal(t, "VERSION", record["path"])

	runID, ok := record["run_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(runID)
	assert.NoError(t, err)
}

func TestNewTextQuietByDefault(t *testing.T) {
	t.Setenv(EnvLevel, "")

	var buf bytes.Buffer
	logger := New(Options{Module: "scd", Writer: &buf, RunID: "fixed"})

	logger.Info("not shown")
	assert.Empty(t, buf.String())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "run_id=fixed")
}

func TestNewLevelFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "warn")

	var buf bytes.Buffer
	logger := New(Options{Writer: &buf})

	logger.Info("not shown")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "not shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetDefault(Options{Level: "debug", Writer: &buf})
	slog.Debug("via default")

	assert.Contains(t, buf.String(), "via default")
}
