// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components get named children (sandbox, http, ws) so run logs can be
// filtered by origin.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	exec := sandbox.New(cfg, sandbox.WithLogger(logger.Component("sandbox")))
package logging
