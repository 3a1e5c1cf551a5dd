package worker

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/threadpool/internal/testutils"
	"github.com/jzx17/threadpool/pkg/metrics"
	"github.com/jzx17/threadpool/pkg/queue"
	"github.com/jzx17/threadpool/pkg/types"
)

// lockedBuffer is a bytes.Buffer safe for concurrent log writes
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestWorker(t *testing.T, id int, cfg *Config, onFinish func(time.Duration, bool)) (*Worker, *queue.Queue[types.Job]) {
	t.Helper()

	q := queue.New[types.Job]()
	w := startWorker(id, q, cfg, onFinish)
	t.Cleanup(func() {
		q.Close()
		<-w.Done()
	})
	return w, q
}

func TestWorkerState(t *testing.T) {
	assert.Equal(t, "idle", WorkerStateIdle.String())
	assert.Equal(t, "working", WorkerStateWorking.String())
	assert.Equal(t, "stopped", WorkerStateStopped.String())
	assert.Equal(t, "unknown", WorkerState(999).String())
}

func TestWorker_StartsOnConstruction(t *testing.T) {
	w, q := newTestWorker(t, 7, DefaultConfig(), nil)

	assert.Equal(t, 7, w.ID())
	assert.Equal(t, WorkerStateIdle, w.State())

	executed := make(chan struct{})
	require.NoError(t, q.Send(NewJob(func() { close(executed) })))

	select {
	case <-executed:
	case <-time.After(time.Second):
		t.Fatal("worker did not execute job")
	}

	assert.Eventually(t, func() bool {
		return w.Stats().TotalProcessed == 1
	}, time.Second, time.Millisecond)
}

func TestWorker_StateTransitions(t *testing.T) {
	w, q := newTestWorker(t, 0, DefaultConfig(), nil)

	gate := testutils.NewGate()
	require.NoError(t, q.Send(NewJob(gate.Wait)))

	assert.Eventually(t, func() bool {
		return w.State() == WorkerStateWorking
	}, time.Second, time.Millisecond)
	assert.True(t, w.Stats().IsActive())

	gate.Open()

	assert.Eventually(t, func() bool {
		return w.State() == WorkerStateIdle
	}, time.Second, time.Millisecond)
	assert.True(t, w.Stats().IsIdle())

	q.Close()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after queue close")
	}
	assert.Equal(t, WorkerStateStopped, w.State())
}

func TestWorker_DrainsBeforeStopping(t *testing.T) {
	w, q := newTestWorker(t, 0, DefaultConfig(), nil)

	gate := testutils.NewGate()
	var executed int64
	require.NoError(t, q.Send(NewJob(gate.Wait)))
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Send(NewJob(func() {
			atomic.AddInt64(&executed, 1)
		})))
	}

	q.Close()
	gate.Open()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, int64(5), atomic.LoadInt64(&executed))
	assert.Equal(t, int64(6), w.Stats().TotalProcessed)
}

func TestWorker_PanicRecovery(t *testing.T) {
	var panics []*types.PanicError
	var mu sync.Mutex

	logs := &lockedBuffer{}
	cfg := DefaultConfig()
	cfg.Logger = zerolog.New(logs)
	cfg.PanicHandler = func(pe *types.PanicError) {
		mu.Lock()
		defer mu.Unlock()
		panics = append(panics, pe)
	}

	var failedCount int64
	w, q := newTestWorker(t, 3, cfg, func(_ time.Duration, failed bool) {
		if failed {
			atomic.AddInt64(&failedCount, 1)
		}
	})

	require.NoError(t, q.Send(NewJobWithID("bad", func() {
		panic("boom")
	})))
	require.NoError(t, q.Send(NewJobWithID("bad-error", func() {
		panic(errors.New("typed failure"))
	})))

	executed := make(chan struct{})
	require.NoError(t, q.Send(NewJobWithID("good", func() { close(executed) })))

	select {
	case <-executed:
	case <-time.After(time.Second):
		t.Fatal("worker stopped serving the queue after a panic")
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&failedCount) == 2 && w.Stats().TotalProcessed == 1
	}, time.Second, time.Millisecond)

	stats := w.Stats()
	assert.Equal(t, int64(2), stats.TotalFailed)
	assert.InDelta(t, 1.0/3.0, stats.GetSuccessRate(), 0.001)
	assert.InDelta(t, 2.0/3.0, stats.GetErrorRate(), 0.001)

	mu.Lock()
	require.Len(t, panics, 2)
	assert.Equal(t, "bad", panics[0].JobID)
	assert.Equal(t, 3, panics[0].WorkerID)
	assert.Equal(t, "boom", panics[0].Value)
	assert.NotEmpty(t, panics[0].Stack)
	assert.EqualError(t, panics[1].Unwrap(), "typed failure")
	mu.Unlock()

	assert.Contains(t, logs.String(), "job panicked")
	assert.Contains(t, logs.String(), `"worker_id":3`)
}

func TestWorker_ConsumedJobCountsAsFailure(t *testing.T) {
	w, q := newTestWorker(t, 0, DefaultConfig(), nil)

	job := NewJob(func() {})
	require.NoError(t, job.Invoke())

	require.NoError(t, q.Send(job))

	assert.Eventually(t, func() bool {
		return w.Stats().TotalFailed == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, int64(0), w.Stats().TotalProcessed)
}

func TestWorker_ExecutionTimeWithMockClock(t *testing.T) {
	mClock := testutils.NewMockClock(t)
	start := mClock.Now()

	cfg := DefaultConfig()
	cfg.Clock = testutils.NewClockWrapper(mClock)

	durations := make(chan time.Duration, 1)
	w, q := newTestWorker(t, 0, cfg, func(d time.Duration, _ bool) {
		durations <- d
	})

	require.NoError(t, q.Send(NewJob(func() {
		mClock.Advance(250 * time.Millisecond)
	})))

	select {
	case d := <-durations:
		assert.Equal(t, 250*time.Millisecond, d)
	case <-time.After(time.Second):
		t.Fatal("job did not complete")
	}

	assert.True(t, start.Equal(w.Stats().LastJobTime), "last job time should be the mock start time")
}

func TestWorker_Metrics(t *testing.T) {
	collector := metrics.NewCollector("test", "worker")
	cfg := DefaultConfig()
	cfg.Metrics = collector

	w, q := newTestWorker(t, 0, cfg, nil)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Workers))

	collector.Enqueued()
	collector.Submitted()
	require.NoError(t, q.Send(NewJob(func() {})))
	collector.Enqueued()
	collector.Submitted()
	require.NoError(t, q.Send(NewJob(func() { panic("x") })))

	assert.Eventually(t, func() bool {
		return w.Stats().TotalProcessed+w.Stats().TotalFailed == 2
	}, time.Second, time.Millisecond)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(collector.JobsCompleted) == 1 &&
			testutil.ToFloat64(collector.JobsFailed) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.QueueDepth))

	q.Close()
	<-w.Done()
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.Workers))
}
