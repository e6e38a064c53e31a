// Package main is the entry point for the tabterm backend.
//
// The server hosts one shell per terminal tab on a pseudo-terminal and
// exposes them to a local frontend over a JSON API and a WebSocket stream.
//
// Configuration:
//   - Environment variables (PORT, HOST, LOG_LEVEL, LOG_DEV, TERMINAL_*,
//     STATE_PATH, RATE_LIMIT_*)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Listen on loopback:8000 with state in ~/.config/tabterm/state.json
//	./server
//
//	# Development mode (console logs, debug level)
//	./server -dev -port 9000 -state ./state.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown (tabs are hung up, then killed)
//
// With -check the binary instead probes a running server's /health and
// exits 0 once it is healthy.
package main
