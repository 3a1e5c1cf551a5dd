package worker

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jzx17/threadpool/pkg/metrics"
	"github.com/jzx17/threadpool/pkg/queue"
	"github.com/jzx17/threadpool/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateIdle represents a worker waiting on the queue for its next job
	WorkerStateIdle WorkerState = iota
	// WorkerStateWorking represents working worker state
	WorkerStateWorking
	// WorkerStateStopped represents stopped worker state
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// maxStackSize bounds the stack captured for a recovered panic
const maxStackSize = 4096

// Worker represents a single long-lived worker goroutine
type Worker struct {
	id    int
	state int32 // atomic state
	queue *queue.Queue[types.Job]
	done  chan struct{}

	// statistics
	totalProcessed int64
	totalFailed    int64
	lastJobTime    int64 // Unix nanosecond timestamp

	clock        types.Clock
	logger       zerolog.Logger
	metrics      *metrics.Collector
	panicHandler types.PanicHandler

	// pool callback for syncing statistics
	onFinish func(time.Duration, bool)
}

// startWorker creates a Worker and immediately launches its goroutine.
// The worker runs until q is closed and drained.
func startWorker(id int, q *queue.Queue[types.Job], cfg *Config, onFinish func(time.Duration, bool)) *Worker {
	w := &Worker{
		id:           id,
		state:        int32(WorkerStateIdle),
		queue:        q,
		done:         make(chan struct{}),
		clock:        cfg.Clock,
		logger:       cfg.Logger.With().Int("worker_id", id).Logger(),
		metrics:      cfg.Metrics,
		panicHandler: cfg.PanicHandler,
		onFinish:     onFinish,
	}

	w.metrics.WorkerStarted()
	go w.run()
	return w
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// Done returns a channel closed when the worker goroutine has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) run() {
	defer close(w.done)
	defer w.metrics.WorkerStopped()
	defer atomic.StoreInt32(&w.state, int32(WorkerStateStopped))

	w.logger.Debug().Msg("worker started")

	for {
		// the queue lock is only held inside Receive; the job runs unlocked
		job, ok := w.queue.Receive()
		if !ok {
			w.logger.Debug().Msg("queue closed, worker exiting")
			return
		}
		w.processJob(job)
	}
}

// processJob processes a single job
func (w *Worker) processJob(job types.Job) {
	atomic.StoreInt32(&w.state, int32(WorkerStateWorking))
	defer atomic.StoreInt32(&w.state, int32(WorkerStateIdle))

	w.metrics.Started()

	startTime := w.clock.Now()
	atomic.StoreInt64(&w.lastJobTime, startTime.UnixNano())

	jobID := jobIDOf(job)
	err := w.invoke(job, jobID)

	executionTime := w.clock.Since(startTime)

	failed := err != nil
	if failed {
		atomic.AddInt64(&w.totalFailed, 1)
		w.handleError(err, jobID)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}

	w.metrics.Finished(executionTime, failed)
	if w.onFinish != nil {
		w.onFinish(executionTime, failed)
	}
}

// invoke runs a job, converting a panic into a *types.PanicError so the
// worker keeps serving the queue
func (w *Worker) invoke(job types.Job, jobID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, maxStackSize)
			n := runtime.Stack(buf, false)
			err = &types.PanicError{
				JobID:    jobID,
				WorkerID: w.id,
				Value:    r,
				Stack:    buf[:n],
			}
		}
	}()

	return job.Invoke()
}

// handleError handles errors
func (w *Worker) handleError(err error, jobID string) {
	if pe, ok := err.(*types.PanicError); ok {
		w.logger.Error().
			Str("job_id", pe.JobID).
			Interface("panic", pe.Value).
			Bytes("stack", pe.Stack).
			Msg("job panicked")

		if w.panicHandler != nil {
			w.panicHandler(pe)
		}
		return
	}

	if je, ok := err.(*types.JobError); ok {
		je.WithWorker(w.id)
	}
	w.logger.Warn().Err(err).Str("job_id", jobID).Msg("job could not be invoked")
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	var lastJobTime time.Time
	if ns := atomic.LoadInt64(&w.lastJobTime); ns != 0 {
		lastJobTime = time.Unix(0, ns)
	}

	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
		LastJobTime:    lastJobTime,
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalFailed    int64
	LastJobTime    time.Time
}

// IsActive checks if Worker is active
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateWorking
}

// IsIdle checks if Worker is idle
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateIdle
}

// GetSuccessRate gets the success rate
func (ws WorkerStats) GetSuccessRate() float64 {
	total := ws.TotalProcessed + ws.TotalFailed
	if total == 0 {
		return 0
	}
	return float64(ws.TotalProcessed) / float64(total)
}

// GetErrorRate gets the error rate
func (ws WorkerStats) GetErrorRate() float64 {
	total := ws.TotalProcessed + ws.TotalFailed
	if total == 0 {
		return 0
	}
	return float64(ws.TotalFailed) / float64(total)
}
