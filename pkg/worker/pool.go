package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/threadpool/pkg/queue"
	"github.com/jzx17/threadpool/pkg/types"
)

// Pool is a fixed-size worker pool. Workers are started by New and keep
// serving the shared queue until Shutdown is called; a pool that is never
// shut down keeps its workers for the lifetime of the process.
type Pool struct {
	config  *Config
	workers []*Worker
	queue   *queue.Queue[types.Job]

	// statistics
	submitted int64
	completed int64
	failed    int64

	closed    int32
	closeOnce sync.Once
}

// New creates a pool of size workers sharing one queue. Every worker is
// running when New returns.
func New(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w, got %d", types.ErrInvalidPoolSize, size)
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	pool := &Pool{
		config:  config,
		workers: make([]*Worker, size),
		queue:   queue.New[types.Job](),
	}

	for i := 0; i < size; i++ {
		pool.workers[i] = startWorker(i, pool.queue, config, pool.recordCompletion)
	}

	config.Logger.Info().Int("size", size).Msg("worker pool started")
	return pool, nil
}

// MustNew is like New but panics if the pool cannot be created
func MustNew(size int, opts ...Option) *Pool {
	pool, err := New(size, opts...)
	if err != nil {
		panic(err)
	}
	return pool
}

// Execute wraps fn in a job and queues it. It returns as soon as the job is
// queued, without waiting for it to start or finish.
func (p *Pool) Execute(fn func()) error {
	if fn == nil {
		return types.ErrNilJob
	}
	return p.Submit(NewJob(fn))
}

// Submit queues a job. It never blocks; the queue is unbounded.
// It returns an error wrapping types.ErrPoolClosed after Shutdown.
func (p *Pool) Submit(job types.Job) error {
	if isNilJob(job) {
		return types.ErrNilJob
	}

	// count before sending so a worker can never observe the job first
	atomic.AddInt64(&p.submitted, 1)
	p.config.Metrics.Enqueued()
	if err := p.queue.Send(job); err != nil {
		atomic.AddInt64(&p.submitted, -1)
		p.config.Metrics.Rejected()
		if errors.Is(err, types.ErrQueueClosed) {
			err = types.ErrPoolClosed
		}
		return types.NewJobError("submit", jobIDOf(job), err)
	}

	p.config.Metrics.Submitted()
	return nil
}

func (p *Pool) recordCompletion(_ time.Duration, failed bool) {
	if failed {
		atomic.AddInt64(&p.failed, 1)
	} else {
		atomic.AddInt64(&p.completed, 1)
	}
}

// Shutdown stops accepting jobs, lets the workers drain every job already
// queued, and waits for all worker goroutines to exit or for ctx to be done.
// Jobs are never interrupted; if ctx expires the workers keep draining in
// the background. Calling Shutdown again waits again.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() {
		atomic.StoreInt32(&p.closed, 1)
		p.queue.Close()
		p.config.Logger.Info().
			Int("queued", p.queue.Len()).
			Msg("worker pool shutting down")
	})

	for _, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			return fmt.Errorf("waiting for worker %d: %w", w.ID(), ctx.Err())
		}
	}

	p.config.Logger.Info().Msg("worker pool stopped")
	return nil
}

// Close shuts the pool down and waits for every queued job to finish
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}

// Size returns the worker pool size
func (p *Pool) Size() int {
	return len(p.workers)
}

// IsClosed checks if the pool has been shut down
func (p *Pool) IsClosed() bool {
	return atomic.LoadInt32(&p.closed) == 1
}

// QueueLength gets the number of jobs waiting for a worker
func (p *Pool) QueueLength() int {
	return p.queue.Len()
}

// Stats gets basic worker pool statistics
func (p *Pool) Stats() types.PoolStats {
	var busy int
	for _, w := range p.workers {
		if w.State() == WorkerStateWorking {
			busy++
		}
	}

	return types.PoolStats{
		PoolSize:    len(p.workers),
		BusyWorkers: busy,
		QueueLength: p.queue.Len(),
		Submitted:   atomic.LoadInt64(&p.submitted),
		Completed:   atomic.LoadInt64(&p.completed),
		Failed:      atomic.LoadInt64(&p.failed),
	}
}

// WorkerStats gets statistics of all Workers
func (p *Pool) WorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}
