/*
Package sandbox runs untrusted playground JavaScript with bounded loops.

# Overview

A run takes raw source text and returns a Result holding the captured output
and a success flag. Each run:

  - Rewrites the source so every loop body starts with a guard call
    (see package transform). Source that does not parse runs unchanged.
  - Creates a fresh goja runtime, a fresh guard.State and a fresh output sink.
  - Exposes print, console, require and the guard bindings to the script.
  - Stops the script when a loop site exceeds its iteration budget, when the
    host deadline expires, or on the first uncaught exception.
  - Drains the sink once into Result.Output.

# Failure policy

Every failure is visible: Success is false and the output keeps whatever the
script printed before it stopped, followed by one line describing the error.
Guard trips are raised with goja's Interrupt, so script-level try/catch cannot
catch them.

# Usage Example

	exec := sandbox.New(sandbox.DefaultConfig(), sandbox.WithLogger(logger))

	res := exec.Execute(ctx, "for (let i = 0; i < 3; i++) print(i)")
	// res.Output == "0\n1\n2\n", res.Success == true

# Concurrency

An Executor runs one script at a time; overlapping calls wait on its mutex.
Pool hands out executors exclusively so independent clients can run in
parallel. Inside a run there is no parallelism and no preemption other than
the guard and the host deadline.
*/
package sandbox
