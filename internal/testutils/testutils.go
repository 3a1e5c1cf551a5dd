// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Recorder collects values from concurrently running jobs in the order they
// are recorded
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// Record appends v
func (r *Recorder[T]) Record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

// Values returns a copy of the recorded values
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Gate is a latch that blocks jobs until it is opened
type Gate struct {
	ch   chan struct{}
	once sync.Once
}

// NewGate creates a closed gate
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Wait blocks until the gate is opened
func (g *Gate) Wait() {
	<-g.ch
}

// Open releases every current and future waiter. Open is idempotent.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.ch) })
}

// WaitTimeout waits for wg with a timeout and fails the test if it expires
func WaitTimeout(t testing.TB, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		require.FailNow(t, "timed out waiting for wait group", "timeout %v", timeout)
	}
}
