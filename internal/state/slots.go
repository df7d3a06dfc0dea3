// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"context"

	"github.com/petenewcomb/lbsim-go/internal/waitq"
)

// Slots limits how many goroutines may hold a slot at the same time. Blocked
// acquirers are admitted in FIFO order. A negative limit means no limit.
type Slots struct {
	limit   int
	inUse   InFlightCounter
	waiters waitq.Queue
}

func NewSlots(limit int) *Slots {
	return &Slots{limit: limit}
}

func (s *Slots) Limit() int {
	return s.limit
}

func (s *Slots) InUse() int {
	return s.inUse.Value()
}

func (s *Slots) tryAcquire() bool {
	if s.limit < 0 {
		s.inUse.Increment()
		return true
	}
	return s.inUse.IncrementIfUnder(s.limit)
}

// Acquire blocks until a slot is available or ctx is done.
func (s *Slots) Acquire(ctx context.Context) error {
	for {
		if s.tryAcquire() {
			return nil
		}
		w := s.waiters.Add()
		// A release between the failed attempt and Add would have found no
		// waiter to notify, so check again before blocking.
		if s.tryAcquire() {
			w.Close()
			return nil
		}
		select {
		case <-w.Done():
		case <-ctx.Done():
			w.Close()
			return context.Cause(ctx)
		}
	}
}

// Release frees a slot acquired with Acquire and wakes the longest waiting
// acquirer.
func (s *Slots) Release() {
	s.inUse.Decrement()
	s.waiters.Notify()
}
