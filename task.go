// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petenewcomb/lbsim-go/internal/mailbox"
	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WorkFunc simulates load units of computation of the given kind and returns
// the time it took.
type WorkFunc func(ctx context.Context, load int, kind workload.OpKind) (time.Duration, error)

// postOffice delivers messages between actors. Delivery never blocks.
type postOffice interface {
	toTask(task int, msg taskMessage)
	toCoordinator(msg coordinatorMessage)
	shutdown()
}

// environment is what every actor of a run shares. All fields are read-only
// after the run starts.
type environment struct {
	iterations int
	units      []*Unit
	work       WorkFunc
	post       postOffice
	logger     *zap.Logger
	metrics    *metrics
}

type taskActor struct {
	*environment
	id       int
	top      topology.Topology
	state    TaskState
	binding  *workload.Binding
	data     []byte
	unit     int
	workTime time.Duration
	inbox    *mailbox.Mailbox[taskMessage]
}

func newTaskActor(env *environment, w workload.Workload, top topology.Topology, id, unit int) (*taskActor, error) {
	t := &taskActor{
		environment: env,
		id:          id,
		top:         top,
		binding:     workload.Bind(w, id),
		unit:        unit,
		inbox:       mailbox.New[taskMessage](),
	}
	size := t.binding.SizeBytes()
	if size < 0 {
		return nil, fmt.Errorf("%w: task %d has negative size %d", ErrConfiguration, id, size)
	}
	t.state.SizeBytes = size
	t.data = make([]byte, size)
	for i := range t.data {
		t.data[i] = byte(id + i)
	}
	if err := t.prepare(1); err != nil {
		return nil, err
	}
	return t, nil
}

// prepare evaluates the workload for the given iteration and clears the
// per-iteration counters.
func (t *taskActor) prepare(iteration int) error {
	load, err := t.binding.Load(iteration)
	if err != nil {
		return err
	}
	expected, err := t.binding.ExpectedIncoming(t.top, iteration)
	if err != nil {
		return err
	}
	t.state.Iteration = iteration
	t.state.Phase = Ready
	t.state.Op = t.binding.Op(iteration)
	t.state.Load = load
	t.state.ExpectedIncoming = expected
	t.state.MessagesSent = 0
	t.state.MessagesReceived = 0
	t.state.Sent = false
	t.workTime = 0
	return nil
}

func (t *taskActor) run(ctx context.Context) error {
	for {
		msg, err := t.inbox.Receive(ctx)
		if errors.Is(err, mailbox.ErrClosed) {
			if t.state.Phase != Finished {
				return violationf("task %d shut down in phase %v of iteration %d", t.id, t.state.Phase, t.state.Iteration)
			}
			return nil
		}
		if err != nil {
			return err
		}
		if err := t.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (t *taskActor) handle(ctx context.Context, msg taskMessage) error {
	switch m := msg.(type) {
	case startIteration:
		if m.Trace.IsValid() {
			ctx = trace.ContextWithRemoteSpanContext(ctx, m.Trace)
		}
		return t.start(ctx, m.Iteration)
	case payload:
		return t.receive(m)
	case beginRebalance:
		return t.pack()
	case relocate:
		return t.restore(m)
	}
	panic(fmt.Sprintf("unexpected task message %T", msg))
}

func (t *taskActor) start(ctx context.Context, iteration int) error {
	if t.state.Phase != Ready || t.state.Iteration != iteration {
		return violationf("task %d asked to start iteration %d while %v in iteration %d",
			t.id, iteration, t.state.Phase, t.state.Iteration)
	}
	t.logger.Debug("Starting iteration",
		zap.Int("task", t.id),
		zap.Int("iteration", iteration),
		zap.Int("unit", t.unit),
		zap.Int("load", t.state.Load),
		zap.Stringer("op", t.state.Op))

	t.state.Phase = Computing
	u := t.units[t.unit]
	if err := u.acquire(ctx); err != nil {
		return err
	}
	elapsed, err := t.work(ctx, t.state.Load, t.state.Op)
	u.release()
	if err != nil {
		return fmt.Errorf("task %d iteration %d: %w", t.id, iteration, err)
	}
	t.workTime = elapsed
	t.metrics.TaskWorkTime.Record(elapsed)

	t.state.Phase = Sending
	for slot, receiver := range t.top.Receivers {
		count, err := t.binding.MessageCount(iteration, slot)
		if err != nil {
			return err
		}
		for m := range count {
			size, err := t.binding.MessageSize(iteration, slot, m)
			if err != nil {
				return err
			}
			t.post.toTask(receiver, payload{
				From:      t.id,
				Iteration: iteration,
				Slot:      slot,
				Data:      t.fill(size),
			})
			t.state.MessagesSent++
			t.metrics.BytesSent.Inc(int64(size))
		}
	}
	t.metrics.MessagesSent.Inc(int64(t.state.MessagesSent))
	t.state.Sent = true
	t.state.Phase = AwaitingMessages
	return t.checkComplete()
}

// fill returns a message body of the given size drawn from the task's data.
func (t *taskActor) fill(size int) []byte {
	b := make([]byte, size)
	if len(t.data) > 0 {
		for i := 0; i < size; {
			i += copy(b[i:], t.data)
		}
	}
	return b
}

func (t *taskActor) receive(p payload) error {
	if t.state.Phase != Ready && t.state.Phase != AwaitingMessages {
		return violationf("task %d got a message from task %d while %v", t.id, p.From, t.state.Phase)
	}
	if p.Iteration != t.state.Iteration {
		return violationf("task %d in iteration %d got a message from task %d for iteration %d",
			t.id, t.state.Iteration, p.From, p.Iteration)
	}
	if !t.isSender(p.From, p.Slot) {
		return violationf("task %d got a message from task %d slot %d, which is not one of its senders",
			t.id, p.From, p.Slot)
	}
	if t.state.MessagesReceived >= t.state.ExpectedIncoming {
		return violationf("task %d got more than the %d messages expected in iteration %d",
			t.id, t.state.ExpectedIncoming, t.state.Iteration)
	}
	t.state.MessagesReceived++
	t.metrics.MessagesReceived.Inc(1)
	if t.state.Phase == AwaitingMessages {
		return t.checkComplete()
	}
	return nil
}

func (t *taskActor) isSender(from, slot int) bool {
	for i, s := range t.top.Senders {
		if s == from && t.top.SenderSlots[i] == slot {
			return true
		}
	}
	return false
}

// checkComplete reports the iteration once both the task's own sends and all
// expected receives are done, then prepares the next iteration.
func (t *taskActor) checkComplete() error {
	if !t.state.complete() {
		return nil
	}
	t.state.Phase = Reporting
	report := TaskReport{
		Task:             t.id,
		Iteration:        t.state.Iteration,
		Unit:             t.unit,
		WorkTime:         t.workTime,
		Op:               t.state.Op,
		Load:             t.state.Load,
		SizeBytes:        t.state.SizeBytes,
		MessagesSent:     t.state.MessagesSent,
		MessagesReceived: t.state.MessagesReceived,
	}
	t.post.toCoordinator(report)
	t.logger.Debug("Completed iteration",
		zap.Int("task", t.id),
		zap.Int("iteration", report.Iteration),
		zap.Duration("work", report.WorkTime),
		zap.Int("sent", report.MessagesSent),
		zap.Int("received", report.MessagesReceived))

	next := t.state.Iteration + 1
	if next > t.iterations {
		t.state.Phase = Finished
		return nil
	}
	return t.prepare(next)
}

func (t *taskActor) snapshot() *Snapshot {
	return &Snapshot{
		Task:     t.id,
		Unit:     t.unit,
		Topology: t.top,
		State:    t.state,
		Memo:     t.binding.Memo(),
		Data:     t.data,
	}
}

func (t *taskActor) pack() error {
	if t.state.Phase != Ready {
		return violationf("task %d asked to rebalance while %v in iteration %d", t.id, t.state.Phase, t.state.Iteration)
	}
	t.state.Phase = Rebalancing
	b, err := t.snapshot().Pack()
	if err != nil {
		return err
	}
	t.metrics.SnapshotBytes.Inc(int64(len(b)))
	t.post.toCoordinator(packed{Task: t.id, Snapshot: b})
	return nil
}

// restore rebuilds the task from its snapshot on its (possibly new) unit.
func (t *taskActor) restore(m relocate) error {
	if t.state.Phase != Rebalancing {
		return violationf("task %d asked to resume while %v", t.id, t.state.Phase)
	}
	s, err := UnpackSnapshot(m.Snapshot)
	if err != nil {
		return err
	}
	if s.Task != t.id {
		return violationf("task %d handed the snapshot of task %d", t.id, s.Task)
	}
	if m.Unit < 0 || m.Unit >= len(t.units) {
		return fmt.Errorf("%w: task %d moved to unit %d, want [0,%d)", ErrInvalidPlacement, t.id, m.Unit, len(t.units))
	}
	if m.Unit != s.Unit {
		t.logger.Debug("Migrating",
			zap.Int("task", t.id),
			zap.Int("from", s.Unit),
			zap.Int("to", m.Unit))
	}
	t.top = s.Topology
	t.state = s.State
	t.state.Phase = Ready
	t.binding.Restore(s.Memo)
	t.data = s.Data
	t.unit = m.Unit
	t.post.toCoordinator(resumed{Task: t.id})
	return nil
}
