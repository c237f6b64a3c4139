package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox"
)

func newSaturatedRunner(t *testing.T) (*Runner, *sandbox.Pool, *sandbox.Executor) {
	t.Helper()

	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 1)
	require.NoError(t, err)
	pool.WithAcquireTimeout(10 * time.Millisecond)
	t.Cleanup(func() { pool.Close() })

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	return NewRunner(pool, 2, time.Hour, nil), pool, held
}

func TestRunnerExecute(t *testing.T) {
	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	runner := NewRunner(pool, 2, time.Second, nil)

	resp, err := runner.Execute(context.Background(), "print('hi')")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", resp.Output)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Kind)
	assert.True(t, strings.HasPrefix(resp.RunID, "run_"))
}

func TestRunnerScriptFailuresDoNotTrip(t *testing.T) {
	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	runner := NewRunner(pool, 1, time.Hour, nil)

	for i := 0; i < 3; i++ {
		resp, err := runner.Execute(context.Background(), "while (true) {}")
		require.NoError(t, err)
		assert.False(t, resp.Success)
	}
	assert.Equal(t, "closed", runner.breaker.State().String())
}

func TestRunnerShedsLoadWhenSaturated(t *testing.T) {
	runner, pool, held := newSaturatedRunner(t)

	for i := 0; i < 2; i++ {
		_, err := runner.Execute(context.Background(), "print(1)")
		assert.ErrorIs(t, err, sandbox.ErrTimeout)
	}

	pool.Release(held)

	_, err := runner.Execute(context.Background(), "print(1)")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, http.StatusServiceUnavailable, poolErrorStatus(err))

	stats := runner.Stats()
	assert.Equal(t, "open", stats["breaker"].(map[string]interface{})["state"])
}

func TestPoolErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: sandbox.ErrTimeout, status: http.StatusServiceUnavailable},
		{err: sandbox.ErrPoolClosed, status: http.StatusServiceUnavailable},
		{err: resilience.ErrCircuitOpen, status: http.StatusServiceUnavailable},
		{err: resilience.ErrTooManyRequests, status: http.StatusServiceUnavailable},
		{err: context.Canceled, status: http.StatusRequestTimeout},
		{err: context.DeadlineExceeded, status: http.StatusRequestTimeout},
		{err: assert.AnError, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, poolErrorStatus(tt.err))
		})
	}
}
