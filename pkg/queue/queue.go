// Package queue provides the unbounded FIFO queue shared between pool producers and workers
package queue

import (
	"sync"

	"github.com/jzx17/threadpool/pkg/types"
)

// compactThreshold is the number of consumed slots tolerated at the head of
// the buffer before the live items are moved back to the front
const compactThreshold = 64

// Queue is an unbounded multi-producer multi-consumer FIFO queue.
//
// Send never blocks. Receive blocks until an item is available and hands each
// item to exactly one receiver. The internal lock is held only for the
// bookkeeping of a single send or receive; a blocked receiver waits on a
// condition variable and does not hold it.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	head   int
	closed bool

	// statistics
	totalSent     int64
	totalReceived int64
}

// New creates an empty open queue
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send appends item to the tail of the queue.
// It returns types.ErrQueueClosed once Close has been called.
func (q *Queue[T]) Send(item T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return types.ErrQueueClosed
	}
	q.items = append(q.items, item)
	q.totalSent++
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// Receive removes and returns the item at the head of the queue, blocking
// while the queue is empty. ok is false only when the queue has been closed
// and every item sent before Close has been received.
func (q *Queue[T]) Receive() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}
	return q.popLocked()
}

// TryReceive is the non-blocking form of Receive. ok is false when no item
// is available.
func (q *Queue[T]) TryReceive() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *Queue[T]) popLocked() (item T, ok bool) {
	if q.head == len(q.items) {
		return item, false
	}

	item = q.items[q.head]
	var zero T
	q.items[q.head] = zero // release the reference
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	q.totalReceived++
	return item, true
}

// Close stops the queue from accepting new items and wakes every blocked
// receiver. Items already queued remain available to Receive. Close is
// idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// IsClosed reports whether Close has been called
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of items waiting to be received
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Stats returns queue statistics
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Length:        len(q.items) - q.head,
		TotalSent:     q.totalSent,
		TotalReceived: q.totalReceived,
	}
}

// Stats defines queue statistics
type Stats struct {
	Length        int
	TotalSent     int64
	TotalReceived int64
}
