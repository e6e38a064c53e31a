// Package server wires the tabterm backend together.
//
// Server Lifecycle:
//  1. Build the logger, metrics and request tracer
//  2. Load persisted state
//  3. Create the terminal dispatcher behind a spawn circuit breaker
//  4. Fan terminal events out to the tab tracker and the stream hub
//  5. Mount middleware, the JSON API and /stream on a Gin router
//  6. Serve until Shutdown
//
// Shutdown stops the HTTP listener first, then disconnects stream
// clients, then closes every tab and waits for its reader to finish.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package server
