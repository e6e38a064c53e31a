/*
Package monitoring provides Prometheus metrics for the backend.

# Overview

Every Metrics value owns its own registry, so several can live in one
process (tests build one per case). It tracks HTTP requests, tab lifecycle
and throughput, WebSocket clients, and the spawn circuit breaker.

Metrics implements terminal.Recorder; the terminal core only ever sees that
interface.

# Usage

	metrics := monitoring.NewMetrics()

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	dispatcher := terminal.NewDispatcher(hub, terminal.Options{Recorder: metrics})
*/
package monitoring
