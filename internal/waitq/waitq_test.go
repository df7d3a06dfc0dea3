// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package waitq_test

import (
	"testing"

	"github.com/petenewcomb/lbsim-go/internal/waitq"
	"github.com/stretchr/testify/require"
)

func notified(w waitq.Waiter) bool {
	select {
	case <-w.Done():
		return true
	default:
		return false
	}
}

func TestNotifyIsFIFO(t *testing.T) {
	chk := require.New(t)
	var q waitq.Queue
	a, b := q.Add(), q.Add()
	chk.Equal(2, q.Len())

	q.Notify()
	chk.True(notified(a))
	chk.False(notified(b))

	q.Notify()
	chk.True(notified(b))
	chk.Equal(0, q.Len())

	// Notifying an empty queue is a no-op.
	q.Notify()
}

func TestClosedWaiterIsSkipped(t *testing.T) {
	chk := require.New(t)
	var q waitq.Queue
	a, b := q.Add(), q.Add()
	a.Close()
	q.Notify()
	chk.True(notified(b))
}

func TestCloseForwardsUnreceivedNotification(t *testing.T) {
	chk := require.New(t)
	var q waitq.Queue
	a, b := q.Add(), q.Add()
	q.Notify()
	// a was notified but gives up without receiving.
	a.Close()
	chk.True(notified(b))
}
