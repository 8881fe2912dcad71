// Package config loads thankschain settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/likes"
)

// Config holds every tunable. Zero values are replaced by defaults on load.
type Config struct {
	// Database is the SQLite file path.
	Database string `yaml:"database"`

	// LikeCap is the most likes one user can give one post.
	LikeCap int64 `yaml:"like_cap"`

	// BatchSize is the number of ids per lookup when assembling completed
	// actions. At most docstore.MaxInValues.
	BatchSize int `yaml:"batch_size"`

	// MaxAttempts bounds transaction retries on conflict.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryBackoff is the base delay between retries.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:     "thankschain.db",
		LikeCap:      likes.DefaultCap,
		BatchSize:    docstore.MaxInValues,
		MaxAttempts:  docstore.DefaultMaxAttempts,
		RetryBackoff: 20 * time.Millisecond,
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.LikeCap < 1 {
		return fmt.Errorf("like_cap must be positive, got %d", c.LikeCap)
	}
	if c.BatchSize < 1 || c.BatchSize > docstore.MaxInValues {
		return fmt.Errorf("batch_size must be in 1..%d, got %d", docstore.MaxInValues, c.BatchSize)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry_backoff must not be negative, got %s", c.RetryBackoff)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", name)
	}
}
