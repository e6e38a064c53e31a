// Package config provides 12-factor configuration management for the tabterm
// backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Terminal: Shell, initial size and session timings for new tabs
//   - Storage: Location of the persisted buttons and UI settings
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - TERMINAL_SHELL, TERMINAL_ARGS, TERMINAL_ROWS, TERMINAL_COLS
//   - TERMINAL_TERM, TERMINAL_READ_CHUNK, TERMINAL_KILL_GRACE
//   - STATE_PATH
package config
