package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Terminal  TerminalConfig
	Storage   StorageConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// TerminalConfig controls the shells started for new tabs.
type TerminalConfig struct {
	Shell     string        `envconfig:"TERMINAL_SHELL"`
	Args      string        `envconfig:"TERMINAL_ARGS"`
	Rows      uint16        `envconfig:"TERMINAL_ROWS" default:"24"`
	Cols      uint16        `envconfig:"TERMINAL_COLS" default:"80"`
	TermType  string        `envconfig:"TERMINAL_TERM" default:"xterm-256color"`
	ReadChunk int           `envconfig:"TERMINAL_READ_CHUNK" default:"8192"`
	KillGrace time.Duration `envconfig:"TERMINAL_KILL_GRACE" default:"2s"`
}

// ShellArgs splits Args on whitespace. Unset returns nil so the shell's own
// default (login or not) applies.
func (t TerminalConfig) ShellArgs() []string {
	if strings.TrimSpace(t.Args) == "" {
		return nil
	}
	return strings.Fields(t.Args)
}

// StorageConfig locates the persisted UI state.
type StorageConfig struct {
	StatePath string `envconfig:"STATE_PATH"`
}

// Path returns the state file location, defaulting under the user config
// directory.
func (s StorageConfig) Path() string {
	if s.StatePath != "" {
		return s.StatePath
	}
	return DefaultStatePath()
}

// DefaultStatePath resolves $XDG_CONFIG_HOME/tabterm/state.json, falling back
// to ~/.config/tabterm/state.json.
func DefaultStatePath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "tabterm", "state.json")
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Terminal: TerminalConfig{
			Rows:      24,
			Cols:      80,
			TermType:  "xterm-256color",
			ReadChunk: 8192,
			KillGrace: 2 * time.Second,
		},
	}
}
