// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"context"
	"fmt"

	"github.com/pborman/uuid"
	"github.com/petenewcomb/lbsim-go/calibrate"
	"github.com/petenewcomb/lbsim-go/internal/mailbox"
	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/sourcegraph/conc"
	"github.com/uber-go/tally/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options configure a run. The zero value is usable: one execution unit with
// one slot, calibrated busy work, no rebalancing moves, and no logging,
// metrics, or tracing.
type Options struct {
	// Units is the number of execution units.
	Units int
	// UnitSlots is how many tasks may compute on one unit at a time. Negative
	// means unlimited.
	UnitSlots int
	// Work simulates computation. When nil, the machine is calibrated and
	// tasks busy-loop for load milliseconds.
	Work WorkFunc
	// Calibration is used when Work is nil.
	Calibration calibrate.Config
	Balancer    Balancer
	Logger      *zap.Logger
	Scope       tally.Scope
	Tracer      trace.Tracer
}

// Run executes the benchmark described by w. On any failure, including
// protocol violations and cancellation of ctx, it returns the error and no
// report.
func Run(ctx context.Context, w workload.Workload, opts *Options) (*Report, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := workload.Validate(w); err != nil {
		return nil, err
	}
	units := max(opts.Units, 1)
	slots := opts.UnitSlots
	if slots == 0 {
		slots = 1
	}
	placement, err := workload.Placement(w, units)
	if err != nil {
		return nil, err
	}
	tops, err := topology.BuildAll(w.Graph(), w.TaskCount())
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scope := opts.Scope
	if scope == nil {
		scope = tally.NoopScope
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/petenewcomb/lbsim-go")
	}
	balancer := opts.Balancer
	if balancer == nil {
		balancer = KeepBalancer{}
	}
	work := opts.Work
	if work == nil {
		busy, err := calibrate.Measure(ctx, opts.Calibration)
		if err != nil {
			return nil, err
		}
		logger.Info("Calibrated",
			zap.Float64("intOpsPerMs", busy.IntOpsPerMs),
			zap.Float64("floatOpsPerMs", busy.FloatOpsPerMs))
		work = busy.Simulate
	}

	runID := uuid.New()
	post := newMailboxes(w.TaskCount())
	env := &environment{
		iterations: w.IterationCount(),
		units:      newUnits(units, slots),
		work:       work,
		post:       post,
		logger:     logger.With(zap.String("run", runID)),
		metrics:    newMetrics(scope),
	}

	tasks := make([]*taskActor, w.TaskCount())
	for id := range tasks {
		t, err := newTaskActor(env, w, tops[id], id, placement[id])
		if err != nil {
			return nil, err
		}
		tasks[id] = t
		post.tasks[id] = t.inbox
	}
	report := newReport(runID, w, units)
	coord := newCoordinator(env, w, placement, balancer, tracer, report)
	post.coordinator = coord.inbox

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg conc.WaitGroup
	for _, t := range tasks {
		wg.Go(func() {
			if err := t.run(ctx); err != nil {
				cancel(fmt.Errorf("task %d: %w", t.id, err))
			}
		})
	}
	wg.Go(func() {
		if err := coord.run(ctx); err != nil {
			cancel(fmt.Errorf("coordinator: %w", err))
		}
	})
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		logger.Error("Run aborted", zap.String("run", runID), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// mailboxes is the in-process postOffice.
type mailboxes struct {
	tasks       []*mailbox.Mailbox[taskMessage]
	coordinator *mailbox.Mailbox[coordinatorMessage]
}

func newMailboxes(tasks int) *mailboxes {
	return &mailboxes{tasks: make([]*mailbox.Mailbox[taskMessage], tasks)}
}

func (m *mailboxes) toTask(task int, msg taskMessage) {
	m.tasks[task].Post(msg)
}

func (m *mailboxes) toCoordinator(msg coordinatorMessage) {
	m.coordinator.Post(msg)
}

func (m *mailboxes) shutdown() {
	for _, mb := range m.tasks {
		mb.Close()
	}
}
