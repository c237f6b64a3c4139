package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/api/http"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/api/middleware"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/api/ws"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *nethttp.Server
	pool    *sandbox.Pool
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// SandboxConfig converts the loaded limits into executor limits
func SandboxConfig(cfg config.SandboxConfig) sandbox.Config {
	return sandbox.Config{
		MaxIterations:    cfg.MaxIterations,
		Timeout:          cfg.Timeout.Std(),
		MaxCallStackSize: cfg.MaxCallStackSize,
		MaxOutputBytes:   cfg.MaxOutputBytes,
	}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing Code Playground Server",
		zap.String("port", cfg.Server.Port),
		zap.Int("max_iterations", cfg.Sandbox.MaxIterations),
		zap.Duration("timeout", cfg.Sandbox.Timeout.Std()),
		zap.Int("pool_size", cfg.Sandbox.PoolSize),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	pool, err := sandbox.NewPool(
		SandboxConfig(cfg.Sandbox),
		cfg.Sandbox.PoolSize,
		sandbox.WithLogger(logger.Component("sandbox")),
		sandbox.WithObserver(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox pool: %w", err)
	}
	pool.WithAcquireTimeout(cfg.Sandbox.AcquireTimeout.Std())
	metrics.TrackPool(pool.InUse)
	logger.Info("Sandbox pool initialized", zap.Int("size", cfg.Sandbox.PoolSize))

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	runner := http.NewRunner(
		pool,
		uint32(cfg.Sandbox.BreakerThreshold),
		cfg.Sandbox.BreakerCooldown.Std(),
		logger.Component("runner"),
	)
	handlers := http.NewHandlers(runner, metrics, logger.Component("http"), cfg.Sandbox.MaxSourceBytes, cfg.Sandbox.MaxIterations)
	wsHandler := ws.NewHandler(runner, metrics, logger.Component("ws"), cfg.Sandbox.MaxSourceBytes)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.POST("/run", handlers.Run)
	router.POST("/transform", handlers.Transform)
	router.GET("/metrics", handlers.Metrics)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpSrv: &nethttp.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		pool:    pool,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the routed handler
func (s *Server) Handler() nethttp.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server, waiting for in-flight requests
// until ctx expires.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("failed to close sandbox pool: %w", err)
	}
	s.logger.Info("Closed sandbox pool")

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
