// Package middleware provides HTTP middleware for the playground backend.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for the editor frontend
//   - RateLimit: Per-IP token bucket rate limiting
//   - GlobalRateLimit: One bucket shared by every client
//   - RequestID: X-Request-ID propagation with ULID fallback
//
// Rate Limiting:
//   - Per-IP tracking with idle-client cleanup
//   - Token bucket algorithm (golang.org/x/time/rate)
//   - Configurable RPS and burst capacity
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
