// Package server provides HTTP server setup and initialization for the playground.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (recovery, request ids, metrics, CORS, rate limiting)
//   - Sandbox executor pool shared by the REST and WebSocket surfaces
//
// Server Lifecycle:
//  1. Load configuration from defaults, file and environment
//  2. Initialize logger (production or development)
//  3. Create metrics and the executor pool
//  4. Setup HTTP routes and middleware
//  5. Start HTTP server
//  6. Graceful shutdown on signal, then close the pool
//
// Example Usage:
//
//	cfg, _ := config.Load(config.ResolvePath(""))
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//		log.Fatal(err)
//	}
package server
