// Package http provides HTTP handlers for the playground REST API.
//
// Endpoints:
//   - Health: / and /health
//   - Runs: POST /run executes a script, POST /transform previews the guarded source
//   - Metrics: /metrics
//
// Run responses carry the script's output and success flag together with a
// run id and the wall-clock time the handler measured around the call.
//
// Runs go through a Runner, which puts a load-shedding breaker in front of
// the executor pool. Repeated pool acquisition timeouts open the breaker and
// new runs are refused with 503 until its cooldown passes.
//
// Example Usage:
//
//	runner := http.NewRunner(pool, 5, 5*time.Second, logger)
//	handlers := http.NewHandlers(runner, metrics, logger, cfg.MaxSourceBytes, cfg.MaxIterations)
//	router.POST("/run", handlers.Run)
package http
