// Package mailbox provides the unbounded, ordered, single-direction queues
// used between the player, pointer and ui goroutines.
package mailbox

import (
	"sync"
	"time"
)

// Queue is an unbounded FIFO. Send never blocks; receivers wait with a timeout.
// A slow consumer only grows the backlog.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Send appends v and wakes a waiting receiver.
func (q *Queue[T]) Send(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// TryRecv pops the oldest item without waiting.
func (q *Queue[T]) TryRecv() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}

// RecvTimeout pops the oldest item, waiting up to d for one to arrive.
func (q *Queue[T]) RecvTimeout(d time.Duration) (T, bool) {
	if v, ok := q.TryRecv(); ok {
		return v, true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-q.notify:
			if v, ok := q.TryRecv(); ok {
				return v, true
			}
		case <-timer.C:
			return q.TryRecv()
		}
	}
}

// Drain waits up to d for the first item, then takes everything queued at that moment.
func (q *Queue[T]) Drain(d time.Duration) []T {
	first, ok := q.RecvTimeout(d)
	if !ok {
		return nil
	}

	q.mu.Lock()
	out := make([]T, 0, len(q.items)+1)
	out = append(out, first)
	out = append(out, q.items...)
	q.items = nil
	q.mu.Unlock()
	return out
}

// Len reports the current backlog.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
