package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/guard"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/transform"
)

// Config defines sandbox limits
type Config struct {
	MaxIterations    int           // Iteration budget per loop site
	Timeout          time.Duration // Host deadline per run, 0 disables
	MaxCallStackSize int           // Maximum call depth, 0 keeps goja's default
	MaxOutputBytes   int           // Capture limit, 0 disables
}

// DefaultConfig returns the playground defaults
func DefaultConfig() Config {
	return Config{
		MaxIterations:    guard.DefaultMaxIterations,
		Timeout:          5 * time.Second,
		MaxCallStackSize: 1024,
		MaxOutputBytes:   1 << 20,
	}
}

// Validate rejects negative limits
func (c Config) Validate() error {
	switch {
	case c.MaxIterations < 0:
		return fmt.Errorf("sandbox: max iterations must not be negative, got %d", c.MaxIterations)
	case c.Timeout < 0:
		return fmt.Errorf("sandbox: timeout must not be negative, got %s", c.Timeout)
	case c.MaxCallStackSize < 0:
		return fmt.Errorf("sandbox: max call stack size must not be negative, got %d", c.MaxCallStackSize)
	case c.MaxOutputBytes < 0:
		return fmt.Errorf("sandbox: max output bytes must not be negative, got %d", c.MaxOutputBytes)
	}
	return nil
}

// Kind classifies how a run ended
type Kind string

const (
	KindOK             Kind = "ok"
	KindGuardTrip      Kind = "guard_trip"
	KindModuleNotFound Kind = "module_not_found"
	KindSyntax         Kind = "syntax"
	KindRuntime        Kind = "runtime"
	KindTimeout        Kind = "timeout"
	KindCancelled      Kind = "cancelled"
	KindInternal       Kind = "internal"
)

// Kinds lists every run outcome
func Kinds() []Kind {
	return []Kind{
		KindOK, KindGuardTrip, KindModuleNotFound, KindSyntax,
		KindRuntime, KindTimeout, KindCancelled, KindInternal,
	}
}

// Result is the single record produced by a run
type Result struct {
	Output  string `json:"output"`
	Success bool   `json:"success"`
	Kind    Kind   `json:"-"`
}

// Encode serializes the result as {"output": ..., "success": ...}
func (r Result) Encode() ([]byte, error) {
	return sonic.Marshal(r)
}

// Observer receives one notification per finished run
type Observer interface {
	ObserveRun(kind Kind, outcome transform.Outcome, loops int, duration time.Duration)
}

// Option configures an Executor
type Option func(*Executor)

// WithLogger sets the executor's logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers a run observer
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

type runIDKey struct{}

// WithRunID attaches a run identifier used in log fields
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run identifier attached to ctx, if any
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
