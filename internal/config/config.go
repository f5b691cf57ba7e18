// Package config loads craftforge settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/craftforge/internal/action"
)

// Config holds the environment-driven knobs. CLI flags override them.
type Config struct {
	// Seed fixes the random source. 0 means an unseeded source.
	Seed          uint64 `env:"CRAFTFORGE_SEED"           envDefault:"0"`
	MaxSteps      int    `env:"CRAFTFORGE_MAX_STEPS"      envDefault:"100"`
	MaxIterations int    `env:"CRAFTFORGE_MAX_ITERATIONS" envDefault:"10"`
	LogLevel      string `env:"CRAFTFORGE_LOG_LEVEL"      envDefault:"info"`
	LogFormat     string `env:"CRAFTFORGE_LOG_FORMAT"     envDefault:"text"`
}

// LogFormats are the accepted CRAFTFORGE_LOG_FORMAT values.
var LogFormats = []string{"text", "json"}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format %q: must be one of %v", c.LogFormat, LogFormats)
	}
	return nil
}

// Rand returns the random source for the configured seed.
func (c Config) Rand() action.Rand {
	if c.Seed == 0 {
		return action.Entropy
	}
	return action.NewRand(c.Seed)
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
}

// NewLogger builds the structured logger the configuration asks for.
// An invalid level falls back to info.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
