/*
Package worker provides a fixed-size worker pool that runs submitted closures
concurrently, decoupling job submission from job execution.

# Overview

A Pool owns N long-lived worker goroutines and the sending side of one shared,
unbounded FIFO queue. Producers hand closures to Execute; exactly one idle
worker takes each job off the queue, runs it, and goes back to waiting.

- Fixed number of workers, chosen at construction and never resized
- Unbounded queue: Execute never blocks the caller
- Every job runs exactly once, on exactly one worker
- Jobs become available to workers in submission order
- Panics inside a job are recovered; the worker keeps serving the queue
- Optional drain-and-stop via Shutdown

# Core Components

## Pool

- New(size) starts size workers before returning; size must be at least 1
- Execute(fn) wraps fn in a FuncJob and queues it (fire-and-forget)
- Submit(job) queues any types.Job implementation
- Shutdown(ctx) closes the queue, drains it, and waits for the workers

## Worker

Worker state machine:

	idle (blocked on queue) -> working -> idle -> ...
	idle -> stopped (queue closed and drained)

The queue lock is held only while a single job is taken off the queue, so
other idle workers can claim the next job while this one is executing.

## FuncJob

A single-invocation job wrapping a func(). The first Invoke runs the function
and drops it; further calls return types.ErrJobConsumed.

# Error Handling

- New returns types.ErrInvalidPoolSize for a size below 1; MustNew panics
- Execute and Submit return an error wrapping types.ErrPoolClosed after Shutdown
- A job reports nothing back to the pool. If it panics, the worker recovers,
  logs the panic with its stack, counts the job as failed, calls the
  configured PanicHandler with a *types.PanicError, and continues

# Ordering

Jobs leave the queue in submission order, but which worker claims a job is
not deterministic and completion order across workers is not guaranteed.
With a pool of size 1, jobs run strictly sequentially.

# Usage Examples

Basic usage:

	pool, err := worker.New(4, worker.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("create pool")
	}
	defer pool.Close()

	if err := pool.Execute(func() {
		handle(conn)
	}); err != nil {
		log.Error().Err(err).Msg("dispatch failed")
	}

Retrieve statistics:

	stats := pool.Stats()
	fmt.Printf("Busy Workers: %d/%d\n", stats.BusyWorkers, stats.PoolSize)
	fmt.Printf("Queued: %d, Completed: %d\n", stats.QueueLength, stats.Completed)

# Configuration Options

- WithLogger: zerolog logger for lifecycle and panic events
- WithMetrics: Prometheus collectors from the metrics package
- WithPanicHandler: callback for recovered panics
- WithClock: clock used to time job execution

# Non-goals

No dynamic resizing, prioritization, backpressure, cancellation of queued or
running jobs, or retries.
*/
package worker
