// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package workload

import (
	"fmt"

	"github.com/petenewcomb/lbsim-go/topology"
)

// Memo records the most recently evaluated load of a task. Iteration zero
// means nothing has been evaluated yet.
type Memo struct {
	Iteration int `json:"iteration"`
	Load      int `json:"load"`
}

// Binding ties a [Workload] to one task and memoizes the task's most recent
// load so that recursive load definitions are evaluated once per iteration.
// A Binding is owned by its task and is not safe for concurrent use.
type Binding struct {
	w    Workload
	task int
	memo Memo
}

func Bind(w Workload, task int) *Binding {
	return &Binding{w: w, task: task}
}

func (b *Binding) Task() int {
	return b.task
}

func (b *Binding) Workload() Workload {
	return b.w
}

// Memo returns the current memo for inclusion in a snapshot.
func (b *Binding) Memo() Memo {
	return b.memo
}

// Restore replaces the memo, typically with one taken from a snapshot.
func (b *Binding) Restore(m Memo) {
	b.memo = m
}

// Load returns the task's load in the given iteration. Requests for the
// memoized iteration or the one after it cost at most one oracle call; any
// other request replays the recursion from the nearest known point.
func (b *Binding) Load(iteration int) (int, error) {
	if iteration < 1 {
		return 0, fmt.Errorf("%w: task %d: load requested for iteration %d", ErrConfiguration, b.task, iteration)
	}
	if b.memo.Iteration == iteration {
		return b.memo.Load, nil
	}
	next, prev := 1, 0
	if b.memo.Iteration > 0 && b.memo.Iteration < iteration {
		next, prev = b.memo.Iteration+1, b.memo.Load
	}
	for it := next; it <= iteration; it++ {
		prev = b.w.Load(b.task, it, prev)
		if prev < 0 {
			return 0, fmt.Errorf("%w: task %d iteration %d: negative load %d", ErrConfiguration, b.task, it, prev)
		}
	}
	b.memo = Memo{Iteration: iteration, Load: prev}
	return prev, nil
}

func (b *Binding) Op(iteration int) OpKind {
	return Op(b.w, b.task, iteration)
}

func (b *Binding) SizeBytes() int {
	return b.w.TaskSizeBytes(b.task)
}

// MessageCount returns the number of messages this task sends to the
// receiver in receiverSlot.
func (b *Binding) MessageCount(iteration, receiverSlot int) (int, error) {
	return messageCount(b.w, b.task, iteration, receiverSlot)
}

func (b *Binding) MessageSize(iteration, receiverSlot, message int) (int, error) {
	size := b.w.MessageSizeBytes(b.task, iteration, receiverSlot, message)
	if size < 0 {
		return 0, fmt.Errorf("%w: task %d iteration %d slot %d message %d: negative size %d",
			ErrConfiguration, b.task, iteration, receiverSlot, message, size)
	}
	return size, nil
}

// ExpectedIncoming returns how many messages the task should receive in the
// given iteration: the sum over its senders of what each sends to the slot
// this task occupies.
func (b *Binding) ExpectedIncoming(top topology.Topology, iteration int) (int, error) {
	total := 0
	for i, sender := range top.Senders {
		n, err := messageCount(b.w, sender, iteration, top.SenderSlots[i])
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func messageCount(w Workload, task, iteration, slot int) (int, error) {
	n := w.MessageCount(task, iteration, slot)
	if n < 0 {
		return 0, fmt.Errorf("%w: task %d iteration %d slot %d: negative message count %d",
			ErrConfiguration, task, iteration, slot, n)
	}
	return n, nil
}
