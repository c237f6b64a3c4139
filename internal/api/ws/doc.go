// Package ws provides WebSocket handling for interactive script runs.
//
// A connection stays open while the editor is in use; each run message is
// executed on the shared executor pool and answered with one result.
//
// Message Types (Client → Server):
//   - run: Execute {"code": "..."}
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection established, carries the connection id
//   - result: Run record (run_id, output, success, kind, elapsed_ms)
//   - pong: Keep-alive reply
//   - error: Invalid or unknown message
//
// Example Usage:
//
//	handler := ws.NewHandler(runner, metrics, logger, cfg.MaxSourceBytes)
//	router.GET("/stream", handler.HandleConnection)
package ws
