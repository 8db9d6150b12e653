// Package config loads lexrel configuration and derives the data file
// paths from a shared prefix.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lexrel/pkg/lexrel/internalerr"
)

// Store drivers selectable in configuration.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the process configuration.
type Config struct {
	// Language selects stop-word rules: "en", "ja", or "" for none.
	Language string `yaml:"language"`
	// DataPrefix is the shared prefix of the data file family. The CLI
	// positional argument overrides it.
	DataPrefix string    `yaml:"data_prefix"`
	Store      Store     `yaml:"store"`
	Predictor  Predictor `yaml:"predictor"`
}

// Store selects the storage backend.
type Store struct {
	Driver string `yaml:"driver"`
}

// Predictor carries predictor tuning.
type Predictor struct {
	// CacheSize bounds the decoded-record cache; 0 means the default.
	CacheSize int `yaml:"cache_size"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Language: "en",
		Store:    Store{Driver: DriverSQLite},
	}
}

// Load reads a YAML configuration file. Fields not set in the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values against the known drivers and languages.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, c.Store.Driver)
	}
	switch c.Language {
	case "", "en", "ja":
	default:
		return fmt.Errorf("%w: unsupported language %q", internalerr.ErrInvalidConfig, c.Language)
	}
	if c.Predictor.CacheSize < 0 {
		return fmt.Errorf("%w: negative cache size", internalerr.ErrInvalidConfig)
	}
	return nil
}

// CoocScorePath derives the co-occurrence score database path from the
// data prefix.
func CoocScorePath(prefix string) string {
	return prefix + "-cooc-score.db"
}

// EntryIndexPath derives the entry index database path from the data
// prefix.
func EntryIndexPath(prefix string) string {
	return prefix + "-entry-index.db"
}
