// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components log through named children so every line carries its origin
// ("terminal", "ws", "http", "store").
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	log := logger.Component(logging.Terminal)
//	log.Info("Tab opened", zap.String("tab_id", "tab-1"))
package logging
