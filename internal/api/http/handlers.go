package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/api/middleware"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/transform"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	runner         *Runner
	metrics        *monitoring.Metrics
	logger         *zap.Logger
	maxSourceBytes int
	maxIterations  int
}

// NewHandlers creates a new handler set
func NewHandlers(runner *Runner, metrics *monitoring.Metrics, logger *zap.Logger, maxSourceBytes, maxIterations int) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		runner:         runner,
		metrics:        metrics,
		logger:         logger,
		maxSourceBytes: maxSourceBytes,
		maxIterations:  maxIterations,
	}
}

// CodeRequest carries a submitted script
type CodeRequest struct {
	Code string `json:"code"`
}

// RunResponse is the record returned for a run
type RunResponse struct {
	RunID     string  `json:"run_id"`
	Output    string  `json:"output"`
	Success   bool    `json:"success"`
	Kind      string  `json:"kind"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// TransformResponse previews the guarded source
type TransformResponse struct {
	Code   string `json:"code"`
	Loops  int    `json:"loops"`
	Parsed bool   `json:"parsed"`
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Code Playground Service (Go)",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status": "healthy",
		"pool":   h.runner.Stats(),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Stats()
	}
	c.JSON(http.StatusOK, resp)
}

// Run executes a script and returns its output record
func (h *Handlers) Run(c *gin.Context) {
	var req CodeRequest
	if !h.bindCode(c, &req) {
		return
	}

	resp, err := h.runner.Execute(c.Request.Context(), req.Code)
	if err != nil {
		h.logger.Warn("Run not started", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		c.JSON(poolErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.logger.Debug("Run finished",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("run_id", resp.RunID),
		zap.String("kind", resp.Kind),
		zap.String("source", utils.SourceFingerprint(req.Code)),
		zap.Float64("elapsed_ms", resp.ElapsedMs),
	)

	c.JSON(http.StatusOK, resp)
}

// Transform returns the guarded form of a script without running it
func (h *Handlers) Transform(c *gin.Context) {
	var req CodeRequest
	if !h.bindCode(c, &req) {
		return
	}

	res := transform.Transform(req.Code, transform.Options{MaxIterations: h.maxIterations})

	c.JSON(http.StatusOK, TransformResponse{
		Code:   res.Source,
		Loops:  res.Loops,
		Parsed: res.Outcome == transform.Parsed,
	})
}

// Metrics serves Prometheus metrics
func (h *Handlers) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func (h *Handlers) bindCode(c *gin.Context, req *CodeRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}

	if err := utils.ValidateSource(req.Code, h.maxSourceBytes); err != nil {
		status := http.StatusBadRequest
		if utils.IsSizeError(err) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func poolErrorStatus(err error) int {
	switch {
	case errors.Is(err, sandbox.ErrTimeout), errors.Is(err, sandbox.ErrPoolClosed),
		errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
