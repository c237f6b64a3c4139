// Package config provides 12-factor configuration management for the playground backend.
//
// Configuration starts from Default, is overlaid by an optional file and
// finally by environment variables. CLI flags can override the result.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Sandbox: Loop budget, run timeout, stack, output and source limits, pool size
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg, err := config.Load(config.ResolvePath(*configPath))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Config Files (selected by extension):
//   - .toml (go-toml), .yaml/.yml (go-yaml), .json (sonic)
//   - Path from --config or PLAYGROUND_CONFIG
//
// Environment Variables:
//   - PORT, HOST
//   - SANDBOX_MAX_ITERATIONS, SANDBOX_TIMEOUT, SANDBOX_MAX_STACK, SANDBOX_MAX_OUTPUT
//   - SANDBOX_MAX_SOURCE, SANDBOX_POOL_SIZE, SANDBOX_ACQUIRE_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
