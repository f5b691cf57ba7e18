package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/action"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, 100, cfg.MaxSteps)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CRAFTFORGE_SEED", "42")
	t.Setenv("CRAFTFORGE_MAX_STEPS", "7")
	t.Setenv("CRAFTFORGE_MAX_ITERATIONS", "3")
	t.Setenv("CRAFTFORGE_LOG_LEVEL", "debug")
	t.Setenv("CRAFTFORGE_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Seed: 42, MaxSteps: 7, MaxIterations: 3, LogLevel: "debug", LogFormat: "json"}, cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key, val string
		contains string
	}{
		{"unparseable", "CRAFTFORGE_MAX_STEPS", "lots", "parse env:"},
		{"zero steps", "CRAFTFORGE_MAX_STEPS", "0", "max steps"},
		{"negative iterations", "CRAFTFORGE_MAX_ITERATIONS", "-1", "max iterations"},
		{"bad level", "CRAFTFORGE_LOG_LEVEL", "loud", "invalid log level"},
		{"bad format", "CRAFTFORGE_LOG_FORMAT", "xml", "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestRand(t *testing.T) {
	assert.Equal(t, action.Entropy, Config{}.Rand())

	a := Config{Seed: 9}.Rand()
	b := Config{Seed: 9}.Rand()
	for range 5 {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn", LogFormat: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "action", "chaos_orb")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "chaos_orb", rec["action"])

	buf.Reset()
	Config{LogLevel: "debug", LogFormat: "text"}.NewLogger(&buf).Debug("trace", "step", "s1")
	assert.Contains(t, buf.String(), "msg=trace step=s1")
}
