package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Terminal config
	assert.Empty(t, cfg.Terminal.Shell)
	assert.Equal(t, uint16(24), cfg.Terminal.Rows)
	assert.Equal(t, uint16(80), cfg.Terminal.Cols)
	assert.Equal(t, "xterm-256color", cfg.Terminal.TermType)
	assert.Equal(t, 8192, cfg.Terminal.ReadChunk)
	assert.Equal(t, 2*time.Second, cfg.Terminal.KillGrace)
}

func TestLoadMatchesDefault(t *testing.T) {
	for _, key := range []string{
		"PORT", "HOST", "LOG_LEVEL", "LOG_DEV",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
		"TERMINAL_SHELL", "TERMINAL_ARGS", "TERMINAL_ROWS", "TERMINAL_COLS",
		"TERMINAL_TERM", "TERMINAL_READ_CHUNK", "TERMINAL_KILL_GRACE", "STATE_PATH",
	} {
		unsetenv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "0.0.0.0",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_RPS":      "500",
		"RATE_LIMIT_BURST":    "1000",
		"RATE_LIMIT_ENABLED":  "false",
		"TERMINAL_SHELL":      "/bin/zsh",
		"TERMINAL_ARGS":       "-i --no-rcs",
		"TERMINAL_ROWS":       "50",
		"TERMINAL_COLS":       "132",
		"TERMINAL_TERM":       "xterm",
		"TERMINAL_READ_CHUNK": "4096",
		"TERMINAL_KILL_GRACE": "500ms",
		"STATE_PATH":          "/tmp/tabterm.yaml",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, "/bin/zsh", cfg.Terminal.Shell)
	assert.Equal(t, []string{"-i", "--no-rcs"}, cfg.Terminal.ShellArgs())
	assert.Equal(t, uint16(50), cfg.Terminal.Rows)
	assert.Equal(t, uint16(132), cfg.Terminal.Cols)
	assert.Equal(t, "xterm", cfg.Terminal.TermType)
	assert.Equal(t, 4096, cfg.Terminal.ReadChunk)
	assert.Equal(t, 500*time.Millisecond, cfg.Terminal.KillGrace)
	assert.Equal(t, "/tmp/tabterm.yaml", cfg.Storage.Path())
}

func TestLoadInvalidValueFallsBack(t *testing.T) {
	t.Setenv("TERMINAL_ROWS", "lots")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, uint16(24), cfg.Terminal.Rows)
}

func TestShellArgs(t *testing.T) {
	tests := []struct {
		name string
		args string
		want []string
	}{
		{name: "unset", args: "", want: nil},
		{name: "blank", args: "   ", want: nil},
		{name: "single", args: "-l", want: []string{"-l"}},
		{name: "several", args: " --login  -i ", want: []string{"--login", "-i"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TerminalConfig{Args: tt.args}.ShellArgs())
		})
	}
}

func TestDefaultStatePath(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		assert.Equal(t, filepath.Join("/xdg", "tabterm", "state.json"), DefaultStatePath())
	})

	t.Run("home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", home)
		t.Setenv("USERPROFILE", home)
		assert.Equal(t, filepath.Join(home, ".config", "tabterm", "state.json"), DefaultStatePath())
	})

	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		assert.Equal(t, "/srv/state.toml", StorageConfig{StatePath: "/srv/state.toml"}.Path())
	})
}

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
