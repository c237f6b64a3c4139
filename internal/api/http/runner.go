package http

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/shared/id"
)

// Runner executes submitted code on the pool behind a load-shedding breaker.
// Only pool saturation trips the breaker; guest failures are ordinary results.
type Runner struct {
	pool    *sandbox.Pool
	breaker *resilience.Breaker
}

// NewRunner wraps pool with a breaker opened by threshold consecutive
// acquisition timeouts and held open for cooldown.
func NewRunner(pool *sandbox.Pool, threshold uint32, cooldown time.Duration, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := resilience.New(resilience.Settings{
		Threshold: threshold,
		Cooldown:  cooldown,
		IsFailure: func(err error) bool { return errors.Is(err, sandbox.ErrTimeout) },
		OnStateChange: func(from, to resilience.State) {
			logger.Warn("Run breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Runner{pool: pool, breaker: breaker}
}

// Execute runs code under a fresh run id and times the call
func (r *Runner) Execute(ctx context.Context, code string) (RunResponse, error) {
	runID := id.NewRunID().String()
	ctx = sandbox.WithRunID(ctx, runID)

	var res sandbox.Result
	start := time.Now()
	err := r.breaker.Do(func() error {
		var err error
		res, err = r.pool.Execute(ctx, code)
		return err
	})
	if err != nil {
		return RunResponse{}, err
	}

	return RunResponse{
		RunID:     runID,
		Output:    res.Output,
		Success:   res.Success,
		Kind:      string(res.Kind),
		ElapsedMs: float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// Stats reports pool and breaker state
func (r *Runner) Stats() map[string]interface{} {
	stats := r.pool.Stats()
	stats["breaker"] = r.breaker.Stats()
	return stats
}
