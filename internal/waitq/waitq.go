// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package waitq provides a FIFO queue of goroutines waiting for a resource to
// become available. Each notification wakes exactly one waiter; a waiter that
// gives up passes any notification it already received on to the next one.
package waitq

import (
	"sync"

	"github.com/gammazero/deque"
)

type Queue struct {
	mu    sync.Mutex
	inner deque.Deque[Waiter]
}

// Add appends a new waiter to the queue. Never blocks.
func (q *Queue) Add() Waiter {
	w := Waiter{
		q:          q,
		notifyChan: make(chan struct{}, 1),
	}
	q.mu.Lock()
	q.inner.PushBack(w)
	q.mu.Unlock()
	return w
}

// Notify signals the waiter at the front of the queue (if any).
func (q *Queue) Notify() {
	for {
		q.mu.Lock()
		if q.inner.Len() == 0 {
			q.mu.Unlock()
			return
		}
		w := q.inner.PopFront()
		q.mu.Unlock()

		select {
		case w.notifyChan <- struct{}{}:
			return
		default:
			// The waiter was closed. Try the next one.
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inner.Len()
}
