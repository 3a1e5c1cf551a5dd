package worker

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jzx17/threadpool/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	job1 := NewJob(func() {})
	job2 := NewJob(func() {})

	assert.True(t, strings.HasPrefix(job1.ID(), "job-"))
	assert.NotEqual(t, job1.ID(), job2.ID())
	assert.False(t, job1.Invoked())
}

func TestNewJobWithID(t *testing.T) {
	job := NewJobWithID("conn-42", func() {})
	assert.Equal(t, "conn-42", job.ID())
}

func TestFuncJob_InvokeOnce(t *testing.T) {
	var calls int64
	job := NewJob(func() {
		atomic.AddInt64(&calls, 1)
	})

	require.NoError(t, job.Invoke())
	assert.True(t, job.Invoked())

	err := job.Invoke()
	assert.ErrorIs(t, err, types.ErrJobConsumed)

	var jobErr *types.JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, job.ID(), jobErr.JobID)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestFuncJob_ConcurrentInvoke(t *testing.T) {
	var calls int64
	job := NewJob(func() {
		atomic.AddInt64(&calls, 1)
	})

	var wg sync.WaitGroup
	var failures int64
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := job.Invoke(); err != nil {
				atomic.AddInt64(&failures, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	assert.Equal(t, int64(15), atomic.LoadInt64(&failures))
}

func TestFuncJob_NilFunction(t *testing.T) {
	job := NewJobWithID("empty", nil)

	err := job.Invoke()
	assert.ErrorIs(t, err, types.ErrNilJob)
}

func TestFuncJob_ImplementsJob(t *testing.T) {
	var _ types.Job = NewJob(func() {})
}
