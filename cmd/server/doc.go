// Package main is the entry point for the code playground server.
//
// The server accepts JavaScript snippets over HTTP and WebSocket, injects a
// loop iteration guard into every loop, and runs them in a fresh interpreter
// with bounded time, stack depth and output.
//
// Architecture:
//
//	Client → gin router → Runner (breaker) → executor pool → goja runtime
//
// The server provides:
//   - POST /run and POST /transform
//   - WebSocket runs on /stream
//   - Prometheus metrics on /metrics
//   - Rate limiting and request ids
//
// Configuration:
//   - Defaults, then a config file (.toml, .yaml, .json), then environment variables
//   - A .env file in the working directory is loaded first if present
//   - CLI flags override everything
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -config playground.toml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
