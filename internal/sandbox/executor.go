package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/guard"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/transform"
)

// Executor runs guest scripts one at a time
type Executor struct {
	config   Config
	logger   *zap.Logger
	observer Observer
	mu       sync.Mutex
}

// New creates an executor
func New(config Config, opts ...Option) *Executor {
	if config.MaxIterations <= 0 {
		config.MaxIterations = guard.DefaultMaxIterations
	}

	e := &Executor{
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the executor's limits
func (e *Executor) Config() Config {
	return e.config
}

// Execute runs src with a fresh capture buffer and returns the run's record.
// It never panics and never returns an error.
func (e *Executor) Execute(ctx context.Context, src string) Result {
	var buf bytes.Buffer

	kind, err := e.Run(ctx, src, &buf)
	if err != nil {
		if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteString(err.Error())
		buf.WriteByte('\n')
	}

	return Result{
		Output:  buf.String(),
		Success: kind == KindOK,
		Kind:    kind,
	}
}

// Run executes src, writing everything the script prints to w. w is only
// written during the call. The returned error describes the failure for
// every kind other than KindOK.
func (e *Executor) Run(ctx context.Context, src string, w io.Writer) (kind Kind, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	logger := e.logger
	if id := RunIDFrom(ctx); id != "" {
		logger = logger.With(zap.String("run_id", id))
	}

	out := newSink(w, e.config.MaxOutputBytes)
	tr := transform.Transform(src, transform.Options{MaxIterations: e.config.MaxIterations})

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Sandbox panic", zap.Any("panic", r))
			kind, err = KindInternal, fmt.Errorf("InternalError: %v", r)
		}
		if out.release() {
			_, _ = io.WriteString(w, truncatedMarker)
		}
		if e.observer != nil {
			e.observer.ObserveRun(kind, tr.Outcome, tr.Loops, time.Since(start))
		}
	}()

	if tr.Outcome == transform.Unparseable {
		logger.Debug("Source not guarded, running as submitted", zap.Error(tr.Err))
	}

	if err := ctx.Err(); err != nil {
		cancelled := &CancelError{Cause: err}
		return cancelled.kind(), cancelled
	}

	state := guard.New()
	vm := goja.New()
	if e.config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(e.config.MaxCallStackSize)
	}
	if err := setupGlobals(vm, out, state); err != nil {
		return KindInternal, fmt.Errorf("InternalError: failed to prepare runtime: %w", err)
	}

	runCtx := ctx
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			vm.Interrupt(&CancelError{Cause: runCtx.Err()})
		case <-done:
		}
	}()

	_, runErr := vm.RunString(tr.Source)
	close(done)

	kind, err = classify(runErr)
	switch kind {
	case KindOK:
	case KindGuardTrip:
		logger.Info("Loop guard tripped",
			zap.String("reason", err.Error()),
			zap.Int("loop_sites", tr.Loops),
			zap.Any("counts", state.Counts()),
		)
	default:
		logger.Debug("Run failed", zap.String("kind", string(kind)), zap.String("error", firstLine(err.Error())))
	}

	return kind, err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
