// Package mailbox provides the unbounded one-directional queue used between
// the simulation loop and a connection worker.
package mailbox

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when receiving from a closed, drained mailbox or
// sending into a closed one.
var ErrClosed = errors.New("mailbox closed")

// Mailbox is an unbounded FIFO queue with one producer and one consumer.
// Send never blocks. The consumer either polls with TryRecv or blocks in Recv.
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
	// notify holds at most one pending wake-up for a blocked receiver.
	notify chan struct{}
}

// New creates an empty, open mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Send enqueues v.
//
// Postcondition: v is delivered after every value sent before it, or
// ErrClosed is returned and v is dropped.
func (m *Mailbox[T]) Send(v T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.queue = append(m.queue, v)
	m.mu.Unlock()
	m.wake()
	return nil
}

// TryRecv dequeues the oldest value without blocking.
//
// Postcondition: returns (v, true, nil) when a value was queued;
// (zero, false, nil) when empty and open; (zero, false, ErrClosed) when
// empty and closed.
func (m *Mailbox[T]) TryRecv() (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if len(m.queue) > 0 {
		v := m.queue[0]
		m.queue[0] = zero
		m.queue = m.queue[1:]
		return v, true, nil
	}
	if m.closed {
		return zero, false, ErrClosed
	}
	return zero, false, nil
}

// Recv blocks until a value is available, the mailbox is closed and drained,
// or ctx is done.
func (m *Mailbox[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, ok, err := m.TryRecv()
		if ok || err != nil {
			return v, err
		}
		select {
		case <-m.notify:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Close marks the mailbox closed. Values already queued stay receivable.
// Calling Close more than once is harmless.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wake()
}

// Len returns the number of queued values.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Mailbox[T]) wake() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Pair returns the two mailboxes of one connection: in carries values from
// the worker to the simulation loop, out carries values back.
func Pair[In, Out any]() (in *Mailbox[In], out *Mailbox[Out]) {
	return New[In](), New[Out]()
}
