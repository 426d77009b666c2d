package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of Config. Absent keys keep their defaults.
type fileConfig struct {
	DBPath        *string  `yaml:"db_path"`
	DebounceMs    *int     `yaml:"debounce_ms"`
	Workers       *int     `yaml:"workers"`
	CaseSensitive *bool    `yaml:"case_sensitive"`
	Locale        *string  `yaml:"locale"`
	ExternalOnly  *bool    `yaml:"external_only"`
	Watch         *bool    `yaml:"watch"`
	Extensions    []string `yaml:"extensions"`
	IgnoreDirs    []string `yaml:"ignore_dirs"`
}

// Load returns Default overridden by the YAML file at path, if any, and then
// by the environment
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(cfg, path); err != nil {
			return cfg, err
		}
	}
	return load(cfg, os.Getenv)
}

// LoadFile overlays the YAML file at path onto cfg
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("configuration file not found: %s", path)
		}
		return cfg, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	if err := fc.apply(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.DBPath != nil {
		cfg.DBPath = resolveDBPath(*fc.DBPath)
	}
	if fc.DebounceMs != nil {
		if *fc.DebounceMs < 0 {
			return fmt.Errorf("debounce_ms must be non-negative")
		}
		cfg.Debounce = time.Duration(*fc.DebounceMs) * time.Millisecond
	}
	if fc.Workers != nil {
		if *fc.Workers <= 0 {
			return fmt.Errorf("workers must be positive")
		}
		cfg.Workers = *fc.Workers
	}
	if fc.Locale != nil {
		tag, err := language.Parse(*fc.Locale)
		if err != nil {
			return fmt.Errorf("locale: %w", err)
		}
		cfg.Locale = tag
	}
	if fc.CaseSensitive != nil {
		cfg.CaseSensitive = *fc.CaseSensitive
	}
	if fc.ExternalOnly != nil {
		cfg.ExternalOnly = *fc.ExternalOnly
	}
	if fc.Watch != nil {
		cfg.Watch = *fc.Watch
	}
	if fc.Extensions != nil {
		cfg.Extensions = normalizeExtensions(fc.Extensions)
	}
	if fc.IgnoreDirs != nil {
		cfg.IgnoreDirs = fc.IgnoreDirs
	}
	return nil
}
