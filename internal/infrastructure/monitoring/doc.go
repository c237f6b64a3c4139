/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
playground backend, tracking HTTP requests, script runs, loop guard trips
and WebSocket traffic. Every collector lives on a private registry so
several instances can coexist in one process.

# Features

- HTTP request metrics (latency, throughput, size)
- Run metrics by outcome kind (count, duration)
- Guard trips, transform fallbacks and loop sites per run
- Executor pool occupancy
- WebSocket connection metrics
- Uptime plus Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Observe runs
	pool, _ := sandbox.NewPool(cfg, 4, sandbox.WithObserver(metrics))
	metrics.TrackPool(pool.InUse)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
