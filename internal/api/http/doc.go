// Package http exposes the workspace over a JSON API built on Gin.
//
// Endpoints:
//   - Health: /health, /metrics
//   - Tabs: /tabs, /tabs/:id, /tabs/:id/input, /tabs/:id/resize, /tabs/:id/focus
//   - Buttons: /buttons, /buttons/:id, /buttons/:id/run
//   - State: /state, /state/terminal, /state/sidebar
//
// Errors are returned as {"error": message, "code": kind} with a status
// chosen from the error's sentinel.
//
// Example Usage:
//
//	handlers := http.NewHandlers(ws, metrics, breaker)
//	handlers.Register(router)
package http
