/*
Package resilience provides a circuit breaker for shedding load.

# Overview

The playground puts a breaker in front of the executor pool. When the pool
stays saturated, acquisition keeps timing out; after a run of such timeouts
the breaker opens and new run requests fail immediately instead of queuing.
Guest script failures never count against it.

# Usage

	breaker := resilience.New(resilience.Settings{
		Threshold: 5,
		Cooldown:  5 * time.Second,
		IsFailure: func(err error) bool { return errors.Is(err, sandbox.ErrTimeout) },
		OnStateChange: func(from, to resilience.State) {
			logger.Warn("Breaker state changed", zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	err := breaker.Do(func() error {
		res, err = pool.Execute(ctx, code)
		return err
	})

# Pattern

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[probe ok]-> Closed
	                                             |
	                                      [probe failed]
	                                             |
	                                             v
	                                           Open
*/
package resilience
