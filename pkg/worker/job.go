package worker

import (
	"fmt"
	"sync/atomic"

	"github.com/jzx17/threadpool/pkg/types"
)

// jobIDCounter is the global job ID counter
var jobIDCounter int64

// FuncJob is the basic implementation of the types.Job interface.
// It wraps a no-argument closure and runs it at most once.
type FuncJob struct {
	id      string
	fn      func()
	invoked atomic.Bool
}

// NewJob creates a new job with a generated ID
func NewJob(fn func()) *FuncJob {
	id := atomic.AddInt64(&jobIDCounter, 1)
	return &FuncJob{
		id: fmt.Sprintf("job-%d", id),
		fn: fn,
	}
}

// NewJobWithID creates a job with a custom ID
func NewJobWithID(id string, fn func()) *FuncJob {
	return &FuncJob{
		id: id,
		fn: fn,
	}
}

// ID returns the job ID
func (j *FuncJob) ID() string {
	return j.id
}

// Invoke runs the wrapped function. Only the first call runs it; the
// closure is dropped afterwards so anything it captured can be collected.
func (j *FuncJob) Invoke() error {
	if !j.invoked.CompareAndSwap(false, true) {
		return types.NewJobError("invoke", j.id, types.ErrJobConsumed)
	}

	fn := j.fn
	j.fn = nil
	if fn == nil {
		return types.NewJobError("invoke", j.id, types.ErrNilJob)
	}

	fn()
	return nil
}

// Invoked reports whether Invoke has been called
func (j *FuncJob) Invoked() bool {
	return j.invoked.Load()
}

// unknownJobID stands in for the ID of a job whose ID method panics
const unknownJobID = "unknown"

// jobIDOf returns job.ID(), or unknownJobID if ID panics
func jobIDOf(job types.Job) (id string) {
	defer func() {
		if recover() != nil {
			id = unknownJobID
		}
	}()
	return job.ID()
}

// isNilJob reports whether job is nil or a typed-nil *FuncJob
func isNilJob(job types.Job) bool {
	if job == nil {
		return true
	}
	fj, ok := job.(*FuncJob)
	return ok && fj == nil
}
