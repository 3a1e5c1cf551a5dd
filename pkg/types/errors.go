// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrInvalidPoolSize indicates a pool was requested with fewer than one worker
	ErrInvalidPoolSize = errors.New("pool size must be at least 1")

	// ErrPoolClosed indicates the pool no longer accepts jobs
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrQueueClosed indicates the shared queue has been closed
	ErrQueueClosed = errors.New("queue is closed")

	// ErrNilJob indicates a nil job or nil function was submitted
	ErrNilJob = errors.New("job cannot be nil")

	// ErrJobConsumed indicates a job was invoked more than once
	ErrJobConsumed = errors.New("job already invoked")
)

// JobError represents an error tied to a specific job
type JobError struct {
	// Operation is the name of the operation where the error occurred
	Operation string

	// JobID identifies the job
	JobID string

	// WorkerID is the worker that handled the job, -1 when no worker was involved
	WorkerID int

	// Cause is the underlying error
	Cause error
}

// NewJobError creates a new job error not yet associated with a worker
func NewJobError(operation, jobID string, cause error) *JobError {
	return &JobError{
		Operation: operation,
		JobID:     jobID,
		WorkerID:  -1,
		Cause:     cause,
	}
}

// Error implements the error interface
func (e *JobError) Error() string {
	if e.WorkerID >= 0 {
		return fmt.Sprintf("%s job %s on worker %d: %v", e.Operation, e.JobID, e.WorkerID, e.Cause)
	}
	return fmt.Sprintf("%s job %s: %v", e.Operation, e.JobID, e.Cause)
}

// Unwrap returns the underlying error
func (e *JobError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *JobError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// WithWorker records the worker that handled the job
func (e *JobError) WithWorker(id int) *JobError {
	e.WorkerID = id
	return e
}

// PanicError represents a panic recovered while a worker executed a job
type PanicError struct {
	// JobID identifies the job that panicked
	JobID string

	// WorkerID is the worker that recovered the panic
	WorkerID int

	// Value is the value passed to panic
	Value interface{}

	// Stack is the goroutine stack at the point of recovery
	Stack []byte
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("job %s panicked on worker %d: %v", e.JobID, e.WorkerID, e.Value)
}

// Unwrap returns the panic value when it is itself an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanic reports whether err wraps a recovered job panic
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
