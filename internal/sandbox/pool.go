package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// DefaultAcquireTimeout bounds how long Acquire waits for a free executor
const DefaultAcquireTimeout = 5 * time.Second

// Pool hands out executors exclusively, bounding concurrent runs
type Pool struct {
	executors      chan *Executor
	size           int
	acquireTimeout time.Duration
	done           chan struct{}
	mu             sync.RWMutex
	closed         bool
}

// NewPool creates a pool of size executors sharing config and options
func NewPool(config Config, size int, opts ...Option) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 4
	}

	pool := &Pool{
		executors:      make(chan *Executor, size),
		size:           size,
		acquireTimeout: DefaultAcquireTimeout,
		done:           make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		pool.executors <- New(config, opts...)
	}

	return pool, nil
}

// WithAcquireTimeout overrides the acquisition wait
func (p *Pool) WithAcquireTimeout(d time.Duration) *Pool {
	if d > 0 {
		p.acquireTimeout = d
	}
	return p
}

// Acquire takes an executor out of the pool
func (p *Pool) Acquire(ctx context.Context) (*Executor, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}

	timer := time.NewTimer(p.acquireTimeout)
	defer timer.Stop()

	select {
	case exec := <-p.executors:
		return exec, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// Release returns an executor to the pool
func (p *Pool) Release(exec *Executor) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || exec == nil {
		return
	}

	select {
	case p.executors <- exec:
	default:
		// Pool full; drop the executor
	}
}

// Execute runs src on a pooled executor
func (p *Pool) Execute(ctx context.Context, src string) (Result, error) {
	exec, err := p.Acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer p.Release(exec)

	return exec.Execute(ctx, src), nil
}

// Close stops handing out executors
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.done)
	return nil
}

// Stats returns pool statistics
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"size":      p.size,
		"available": len(p.executors),
		"in_use":    p.size - len(p.executors),
		"closed":    p.closed,
	}
}

// InUse returns the number of executors currently handed out
func (p *Pool) InUse() int {
	return p.size - len(p.executors)
}
