// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package waitq

// A Waiter is returned by [Queue.Add] with an empty notification channel of
// buffer length one. Its lifecycle ends in one of these ways:
//
//   - [Queue.Notify] pops it and fills the buffer, and the owner receives from
//     [Waiter.Done]. The waiter is out of the queue and needs no Close.
//   - The owner calls [Waiter.Close] while still queued. Close fills the
//     buffer so that Notify skips the waiter when it reaches it.
//   - Notify fills the buffer but the owner calls Close before receiving.
//     Close finds the buffer full and forwards the notification by calling
//     Notify again.
//
// The zero Waiter is never signaled: Done returns a nil channel and Close
// panics.
//
// Waiters may be copied and are passed by value.
type Waiter struct {
	q          *Queue
	notifyChan chan struct{}
}

func (w Waiter) Done() <-chan struct{} {
	return w.notifyChan
}

func (w Waiter) Close() {
	select {
	case w.notifyChan <- struct{}{}:
	default:
		w.q.Notify()
	}
}
