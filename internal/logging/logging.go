// Package logging builds the process loggers.
//
// Level and format come from PHPSYMBOLS_LOG_LEVEL (debug, info, warn, error)
// and PHPSYMBOLS_LOG_FORMAT (text, json). Output goes to stderr because
// stdout carries the tool protocol.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	envLevel  = "PHPSYMBOLS_LOG_LEVEL"
	envFormat = "PHPSYMBOLS_LOG_FORMAT"
)

// Config holds logger settings
type Config struct {
	Level     slog.Level
	Format    string // text or json
	Output    io.Writer
	Component string
}

// DefaultConfig returns info level text logging to stderr
func DefaultConfig(component string) Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    os.Stderr,
		Component: component,
	}
}

// LoadConfigFromEnv applies environment overrides to DefaultConfig
func LoadConfigFromEnv(component string) Config {
	cfg := DefaultConfig(component)
	if v := os.Getenv(envLevel); v != "" {
		if lvl, ok := ParseLevel(v); ok {
			cfg.Level = lvl
		}
	}
	if v := os.Getenv(envFormat); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	return cfg
}

// ParseLevel maps a level name onto a slog level
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// New creates a logger from cfg
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	l := slog.New(h)
	if cfg.Component != "" {
		l = l.With("component", cfg.Component)
	}
	return l
}

// Default returns a logger configured from the environment
func Default(component string) *slog.Logger {
	return New(LoadConfigFromEnv(component))
}

// Nop returns a logger that discards everything
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrNop returns l, or a discarding logger when l is nil
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
