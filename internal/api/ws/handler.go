package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/CodePlayground/backend/internal/api/http"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/shared/utils"
)

const (
	// DefaultIdleTimeout closes connections that send nothing for this long
	DefaultIdleTimeout = 2 * time.Minute
	writeWait          = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is a client request
type Message struct {
	Type string `json:"type"`
	Code string `json:"code,omitempty"`
}

// Handler manages WebSocket connections
type Handler struct {
	runner         *apihttp.Runner
	metrics        *monitoring.Metrics
	logger         *zap.Logger
	maxSourceBytes int
	idleTimeout    time.Duration
}

// NewHandler creates a new WebSocket handler
func NewHandler(runner *apihttp.Runner, metrics *monitoring.Metrics, logger *zap.Logger, maxSourceBytes int) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		runner:         runner,
		metrics:        metrics,
		logger:         logger,
		maxSourceBytes: maxSourceBytes,
		idleTimeout:    DefaultIdleTimeout,
	}
}

// WithIdleTimeout overrides the read deadline
func (h *Handler) WithIdleTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.idleTimeout = d
	}
	return h
}

// HandleConnection handles WebSocket upgrade and messages. Messages on one
// connection are handled in order, so each connection has at most one run
// in flight.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	logger := h.logger.With(zap.String("conn_id", connID))

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	// Get request context for propagation
	reqCtx := c.Request.Context()

	if h.maxSourceBytes > 0 {
		conn.SetReadLimit(int64(h.maxSourceBytes) + 4096)
	}
	_ = conn.SetReadDeadline(time.Now().Add(h.idleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.idleTimeout))
	})

	h.send(conn, map[string]interface{}{
		"type":    "system",
		"message": "Connected to Code Playground Service (Go)",
		"conn_id": connID,
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		// Extend read deadline on any message received
		_ = conn.SetReadDeadline(time.Now().Add(h.idleTimeout))

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.record("in", "invalid")
			h.sendError(conn, "invalid message: "+err.Error())
			continue
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "run":
			h.handleRun(reqCtx, conn, logger, msg)
		case "ping":
			h.send(conn, map[string]interface{}{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

func (h *Handler) handleRun(ctx context.Context, conn *websocket.Conn, logger *zap.Logger, msg Message) {
	if err := utils.ValidateSource(msg.Code, h.maxSourceBytes); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	resp, err := h.runner.Execute(ctx, msg.Code)
	if err != nil {
		logger.Warn("Run not started", zap.Error(err))
		h.sendError(conn, err.Error())
		return
	}

	logger.Debug("Run finished", zap.String("run_id", resp.RunID), zap.String("kind", resp.Kind))

	h.send(conn, map[string]interface{}{
		"type":       "result",
		"run_id":     resp.RunID,
		"output":     resp.Output,
		"success":    resp.Success,
		"kind":       resp.Kind,
		"elapsed_ms": resp.ElapsedMs,
	})
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

func (h *Handler) send(conn *websocket.Conn, data map[string]interface{}) error {
	payload, err := sonic.Marshal(data)
	if err != nil {
		return err
	}
	if t, ok := data["type"].(string); ok {
		h.record("out", t)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
