// Package types defines core interfaces and types shared by the pool packages
package types

// Job defines a single-invocation unit of work
type Job interface {
	// ID returns the job ID (for tracking and logging)
	ID() string

	// Invoke runs the job. A job runs at most once; any later call returns
	// ErrJobConsumed without running anything.
	Invoke() error
}

// PanicHandler is called with every panic recovered from a job
type PanicHandler func(*PanicError)

// PoolStats defines basic statistics for a worker pool
type PoolStats struct {
	// PoolSize is the fixed number of workers
	PoolSize int

	// BusyWorkers is the number of workers currently executing a job
	BusyWorkers int

	// QueueLength is the number of jobs waiting for a worker
	QueueLength int

	// Submitted is the total number of jobs accepted by Execute/Submit
	Submitted int64

	// Completed is the total number of jobs that ran to completion
	Completed int64

	// Failed is the total number of jobs that panicked or could not be invoked
	Failed int64
}

// Pending returns the number of accepted jobs that have not finished yet
func (s PoolStats) Pending() int64 {
	return s.Submitted - s.Completed - s.Failed
}

// Utilization returns the fraction of workers currently busy
func (s PoolStats) Utilization() float64 {
	if s.PoolSize == 0 {
		return 0
	}
	return float64(s.BusyWorkers) / float64(s.PoolSize)
}
