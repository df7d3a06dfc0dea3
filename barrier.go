// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

// Barrier counts one arrival from each of a fixed number of tasks and fires
// a completion callback when the last one lands. Arrivals that would make the
// count inconsistent are protocol violations. A Barrier is not safe for
// concurrent use; it is meant to be owned by a single actor.
type Barrier[T any] struct {
	name       string
	arrived    []bool
	payloads   []T
	count      int
	done       bool
	onComplete func(payloads []T) error
}

// NewBarrier returns a barrier expecting one arrival from each of n tasks.
// onComplete receives the payloads indexed by task id.
func NewBarrier[T any](name string, n int, onComplete func(payloads []T) error) *Barrier[T] {
	return &Barrier[T]{
		name:       name,
		arrived:    make([]bool, n),
		payloads:   make([]T, n),
		onComplete: onComplete,
	}
}

// Arrive records task's arrival. The arrival that completes the barrier runs
// the completion callback and returns its error.
func (b *Barrier[T]) Arrive(task int, payload T) error {
	n := len(b.arrived)
	switch {
	case task < 0 || task >= n:
		return violationf("%s barrier: arrival from unknown task %d", b.name, task)
	case b.done:
		return violationf("%s barrier: arrival from task %d after all %d arrived", b.name, task, n)
	case b.arrived[task]:
		return violationf("%s barrier: duplicate arrival from task %d", b.name, task)
	}
	b.arrived[task] = true
	b.payloads[task] = payload
	b.count++
	if b.count < n {
		return nil
	}
	b.done = true
	return b.onComplete(b.payloads)
}

// Reset rearms the barrier for another round. Payloads handed to the previous
// completion callback are not reused.
func (b *Barrier[T]) Reset() {
	clear(b.arrived)
	b.payloads = make([]T, len(b.arrived))
	b.count = 0
	b.done = false
}

func (b *Barrier[T]) Count() int {
	return b.count
}

func (b *Barrier[T]) Done() bool {
	return b.done
}
