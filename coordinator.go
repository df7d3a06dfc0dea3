// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"context"
	"fmt"
	"time"

	"github.com/petenewcomb/lbsim-go/internal/mailbox"
	"github.com/petenewcomb/lbsim-go/workload"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type coordinatorPhase int

const (
	awaitingReports coordinatorPhase = iota
	awaitingPacked
	awaitingResumed
	coordinatorDone
)

// coordinator drives the population through the iterations. It is the only
// writer of the records in report.
type coordinator struct {
	*environment
	ctx        context.Context
	tasks      int
	frequency  int
	balancer   Balancer
	tracer     trace.Tracer
	inbox      *mailbox.Mailbox[coordinatorMessage]
	phase      coordinatorPhase
	iteration  int
	placement  []int
	lastLoads  []TaskLoad
	iterStart  time.Time
	pauseStart time.Time
	iterSpan   trace.Span
	pauseSpan  trace.Span
	reports    *Barrier[TaskReport]
	packed     *Barrier[[]byte]
	resumed    *Barrier[struct{}]
	report     *Report
}

func newCoordinator(env *environment, w workload.Workload, placement []int, balancer Balancer, tracer trace.Tracer, report *Report) *coordinator {
	c := &coordinator{
		environment: env,
		ctx:         context.Background(),
		tasks:       w.TaskCount(),
		frequency:   w.LBFrequency(),
		balancer:    balancer,
		tracer:      tracer,
		inbox:       mailbox.New[coordinatorMessage](),
		placement:   placement,
		report:      report,
	}
	c.reports = NewBarrier("report", c.tasks, c.endIteration)
	c.packed = NewBarrier("pack", c.tasks, c.rebalance)
	c.resumed = NewBarrier("resume", c.tasks, c.endRebalance)
	return c
}

// run starts the first iteration and processes messages until the last
// iteration has been reported.
func (c *coordinator) run(ctx context.Context) error {
	c.ctx = ctx
	c.logger.Info("Starting run",
		zap.String("run", c.report.RunID),
		zap.Int("tasks", c.tasks),
		zap.Int("iterations", c.iterations),
		zap.Int("lbFrequency", c.frequency),
		zap.Int("rebalances", workload.RebalanceCount(c.iterations, c.frequency)),
		zap.Stringer("graph", c.report.Graph),
		zap.Int("units", len(c.units)))

	c.startIteration(1)
	for c.phase != coordinatorDone {
		msg, err := c.inbox.Receive(ctx)
		if err != nil {
			c.endSpans(err)
			return err
		}
		if err := c.handle(msg); err != nil {
			c.metrics.Violations.Inc(1)
			c.endSpans(err)
			return err
		}
	}
	return nil
}

func (c *coordinator) handle(msg coordinatorMessage) error {
	switch m := msg.(type) {
	case TaskReport:
		if c.phase != awaitingReports || m.Iteration != c.iteration {
			return violationf("report from task %d for iteration %d while coordinator is in iteration %d (phase %d)",
				m.Task, m.Iteration, c.iteration, c.phase)
		}
		return c.reports.Arrive(m.Task, m)
	case packed:
		if c.phase != awaitingPacked {
			return violationf("unexpected snapshot from task %d before iteration %d", m.Task, c.iteration+1)
		}
		return c.packed.Arrive(m.Task, m.Snapshot)
	case resumed:
		if c.phase != awaitingResumed {
			return violationf("unexpected resume from task %d before iteration %d", m.Task, c.iteration+1)
		}
		return c.resumed.Arrive(m.Task, struct{}{})
	}
	panic(fmt.Sprintf("unexpected coordinator message %T", msg))
}

func (c *coordinator) startIteration(iteration int) {
	c.phase = awaitingReports
	c.iteration = iteration
	c.reports.Reset()
	_, c.iterSpan = c.tracer.Start(c.ctx, "iteration",
		trace.WithAttributes(attribute.Int("iteration", iteration)))
	c.iterStart = time.Now()
	span := c.iterSpan.SpanContext()
	for task := range c.tasks {
		c.post.toTask(task, startIteration{Iteration: iteration, Trace: span})
	}
}

// endIteration runs when every task has reported the current iteration.
func (c *coordinator) endIteration(reports []TaskReport) error {
	elapsed := time.Since(c.iterStart)
	var longest time.Duration
	loads := make([]TaskLoad, len(reports))
	for task, r := range reports {
		longest = max(longest, r.WorkTime)
		c.report.Tasks[task] = append(c.report.Tasks[task], r)
		loads[task] = TaskLoad{
			Task:      task,
			Unit:      r.Unit,
			WorkTime:  r.WorkTime,
			Load:      r.Load,
			SizeBytes: r.SizeBytes,
		}
	}
	c.lastLoads = loads
	c.report.Iterations = append(c.report.Iterations, IterationRecord{
		Iteration: c.iteration,
		Duration:  longest,
		Elapsed:   elapsed,
	})
	c.metrics.Iterations.Inc(1)
	c.metrics.IterationTime.Record(longest)
	c.metrics.IterationWall.Record(elapsed)
	c.iterSpan.SetAttributes(attribute.Int64("duration_us", longest.Microseconds()))
	c.iterSpan.End()
	c.iterSpan = nil
	c.logger.Debug("Iteration complete",
		zap.Int("iteration", c.iteration),
		zap.Duration("duration", longest),
		zap.Duration("elapsed", elapsed))

	next := c.iteration + 1
	switch {
	case next > c.iterations:
		c.finish()
	case workload.RebalanceDue(next, c.frequency):
		c.beginRebalance()
	default:
		c.startIteration(next)
	}
	return nil
}

func (c *coordinator) beginRebalance() {
	c.phase = awaitingPacked
	c.packed.Reset()
	_, c.pauseSpan = c.tracer.Start(c.ctx, "rebalance",
		trace.WithAttributes(attribute.Int("before_iteration", c.iteration+1)))
	c.pauseStart = time.Now()
	for task := range c.tasks {
		c.post.toTask(task, beginRebalance{})
	}
}

// rebalance runs once every task has packed itself. It picks the new
// placement and hands each task its snapshot back.
func (c *coordinator) rebalance(snapshots [][]byte) error {
	ctx := trace.ContextWithSpan(c.ctx, c.pauseSpan)
	placement, err := c.balancer.Balance(ctx, c.lastLoads, len(c.units))
	if err != nil {
		return fmt.Errorf("rebalancing before iteration %d: %w", c.iteration+1, err)
	}
	if err := checkPlacement(placement, c.tasks, len(c.units)); err != nil {
		return fmt.Errorf("rebalancing before iteration %d: %w", c.iteration+1, err)
	}
	migrations := 0
	for task, u := range placement {
		if u != c.placement[task] {
			migrations++
		}
	}
	c.placement = placement
	c.report.Rebalances = append(c.report.Rebalances, RebalanceRecord{
		Index:           len(c.report.Rebalances),
		BeforeIteration: c.iteration + 1,
		Migrations:      migrations,
	})

	c.phase = awaitingResumed
	c.resumed.Reset()
	for task, snapshot := range snapshots {
		c.post.toTask(task, relocate{Unit: placement[task], Snapshot: snapshot})
	}
	return nil
}

// endRebalance runs once every task has been restored.
func (c *coordinator) endRebalance([]struct{}) error {
	pause := time.Since(c.pauseStart)
	rec := &c.report.Rebalances[len(c.report.Rebalances)-1]
	rec.Pause = pause
	c.metrics.Rebalances.Inc(1)
	c.metrics.PauseTime.Record(pause)
	c.metrics.Migrations.Inc(int64(rec.Migrations))
	c.pauseSpan.SetAttributes(attribute.Int("migrations", rec.Migrations))
	c.pauseSpan.End()
	c.pauseSpan = nil
	c.logger.Info("Rebalanced",
		zap.Int("call", rec.Index),
		zap.Int("beforeIteration", rec.BeforeIteration),
		zap.Duration("pause", pause),
		zap.Int("migrations", rec.Migrations))
	c.startIteration(c.iteration + 1)
	return nil
}

func (c *coordinator) finish() {
	c.phase = coordinatorDone
	c.post.shutdown()
	c.logger.Info("Run complete",
		zap.String("run", c.report.RunID),
		zap.Duration("iterationTotal", c.report.IterationTotal()),
		zap.Duration("pauseTotal", c.report.PauseTotal()))
}

func (c *coordinator) endSpans(err error) {
	for _, span := range []trace.Span{c.iterSpan, c.pauseSpan} {
		if span != nil {
			span.RecordError(err)
			span.End()
		}
	}
}
