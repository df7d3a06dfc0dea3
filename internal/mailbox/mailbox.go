// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package mailbox provides the unbounded FIFO inbox owned by each actor.
// Posting never blocks, so actors that message each other cannot deadlock on
// a full inbox.
package mailbox

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
	"github.com/petenewcomb/lbsim-go/internal/cerr"
)

const ErrClosed = cerr.Error("mailbox closed")

// Mailbox is safe for any number of posters and a single receiver.
type Mailbox[T any] struct {
	mu     sync.Mutex
	q      deque.Deque[T]
	closed bool
	signal chan struct{}
}

func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{signal: make(chan struct{}, 1)}
}

// Post appends msg. It returns false if the mailbox has been closed.
func (m *Mailbox[T]) Post(msg T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.q.PushBack(msg)
	m.mu.Unlock()
	m.wake()
	return true
}

// Receive removes and returns the oldest message, blocking until one is
// available. Messages posted before Close are still delivered; after they
// are drained Receive returns ErrClosed.
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	for {
		m.mu.Lock()
		if m.q.Len() > 0 {
			msg := m.q.PopFront()
			m.mu.Unlock()
			return msg, nil
		}
		closed := m.closed
		m.mu.Unlock()

		var zero T
		if closed {
			return zero, ErrClosed
		}
		select {
		case <-m.signal:
		case <-ctx.Done():
			return zero, context.Cause(ctx)
		}
	}
}

func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wake()
}

func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Len()
}

func (m *Mailbox[T]) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}
