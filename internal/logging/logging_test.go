package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("reader")
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, os.Stderr, cfg.Output)
	assert.Equal(t, "reader", cfg.Component)
}

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   slog.Level
		fmt    string
	}{
		{"defaults", "", "", slog.LevelInfo, "text"},
		{"debug", "debug", "", slog.LevelDebug, "text"},
		{"warning alias", "WARNING", "", slog.LevelWarn, "text"},
		{"unknown level keeps default", "loud", "", slog.LevelInfo, "text"},
		{"json", "error", "JSON", slog.LevelError, "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envLevel, tt.level)
			t.Setenv(envFormat, tt.format)
			cfg := LoadConfigFromEnv("x")
			assert.Equal(t, tt.want, cfg.Level)
			assert.Equal(t, tt.fmt, cfg.Format)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf, Component: "store"})
	l.Debug("updated", "symbols", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "updated", rec["msg"])
	assert.Equal(t, "store", rec["component"])
	assert.Equal(t, float64(3), rec["symbols"])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("dropped") })
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
