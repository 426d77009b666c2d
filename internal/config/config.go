// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Environment variables read by LoadFromEnv
const (
	EnvDBPath        = "PHPSYMBOLS_DB_PATH"
	EnvDebounceMs    = "PHPSYMBOLS_DEBOUNCE_MS"
	EnvWorkers       = "PHPSYMBOLS_WORKERS"
	EnvCaseSensitive = "PHPSYMBOLS_CASE_SENSITIVE"
	EnvLocale        = "PHPSYMBOLS_LOCALE"
	EnvExternalOnly  = "PHPSYMBOLS_EXTERNAL_ONLY"
	EnvWatch         = "PHPSYMBOLS_WATCH"
	EnvExtensions    = "PHPSYMBOLS_EXTENSIONS"
)

// Config holds the settings shared by the workspace and its adapters
type Config struct {
	// DBPath is the catalog database file; empty disables the catalog.
	// "default" selects DefaultDBPath and a leading ~/ is expanded.
	DBPath string

	// Debounce is the quiet period before a changed document is re-read
	Debounce time.Duration

	// Workers bounds concurrent file reads during directory indexing
	Workers int

	// CaseSensitive selects case-sensitive suffix index keys
	CaseSensitive bool

	// Locale orders suffix index keys
	Locale language.Tag

	// ExternalOnly reads files indexed from disk for their external
	// surface only. Open documents are always read in full.
	ExternalOnly bool

	// Watch enables file system notifications for indexed directories
	Watch bool

	// Extensions are the file extensions treated as PHP sources
	Extensions []string

	// IgnoreDirs are directory names skipped while indexing
	IgnoreDirs []string
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Debounce:     250 * time.Millisecond,
		Workers:      runtime.NumCPU(),
		Locale:       language.English,
		ExternalOnly: true,
		Extensions:   []string{".php", ".phtml", ".inc"},
		IgnoreDirs:   []string{"node_modules", ".git", ".svn", ".hg", ".idea", ".vscode", "cache", "storage"},
	}
}

// DefaultDBPath returns the default catalog location under the user's home
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".phpsymbols", "catalog.db")
}

func resolveDBPath(p string) string {
	if p == "default" {
		return DefaultDBPath()
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// LoadFromEnv returns Default overridden by the environment. Malformed
// values are reported and leave the default in place.
func LoadFromEnv() (Config, error) {
	return load(Default(), os.Getenv)
}

func load(cfg Config, getenv func(string) string) (Config, error) {
	var errs []string
	report := func(name, value string, err error) {
		errs = append(errs, fmt.Sprintf("%s=%q: %v", name, value, err))
	}

	if v := getenv(EnvDBPath); v != "" {
		cfg.DBPath = resolveDBPath(v)
	}

	if v := getenv(EnvDebounceMs); v != "" {
		if ms, err := strconv.Atoi(v); err != nil || ms < 0 {
			report(EnvDebounceMs, v, fmt.Errorf("want a non-negative integer"))
		} else {
			cfg.Debounce = time.Duration(ms) * time.Millisecond
		}
	}
	if v := getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			report(EnvWorkers, v, fmt.Errorf("want a positive integer"))
		} else {
			cfg.Workers = n
		}
	}
	if v := getenv(EnvLocale); v != "" {
		if tag, err := language.Parse(v); err != nil {
			report(EnvLocale, v, err)
		} else {
			cfg.Locale = tag
		}
	}
	for name, dst := range map[string]*bool{
		EnvCaseSensitive: &cfg.CaseSensitive,
		EnvExternalOnly:  &cfg.ExternalOnly,
		EnvWatch:         &cfg.Watch,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			report(name, v, err)
			continue
		}
		*dst = b
	}
	if v := getenv(EnvExtensions); v != "" {
		cfg.Extensions = normalizeExtensions(strings.Split(v, ","))
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func normalizeExtensions(in []string) []string {
	var exts []string
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, strings.ToLower(e))
	}
	return exts
}

// IsSource reports whether path has one of the configured extensions
func (c Config) IsSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsIgnoredDir reports whether a directory name is skipped while indexing.
// Hidden directories and vendor are always skipped.
func (c Config) IsIgnoredDir(name string) bool {
	if name == "vendor" || (strings.HasPrefix(name, ".") && name != "." && name != "..") {
		return true
	}
	for _, d := range c.IgnoreDirs {
		if name == d {
			return true
		}
	}
	return false
}
