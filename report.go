// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
)

// IterationRecord describes one completed iteration.
type IterationRecord struct {
	Iteration int `yaml:"iteration"`
	// Duration is the longest work time reported by any task.
	Duration time.Duration `yaml:"duration"`
	// Elapsed is the wall time from starting the iteration to receiving its
	// last report.
	Elapsed time.Duration `yaml:"elapsed"`
}

// RebalanceRecord describes one rebalance pass.
type RebalanceRecord struct {
	Index           int           `yaml:"index"`
	BeforeIteration int           `yaml:"before_iteration"`
	Pause           time.Duration `yaml:"pause"`
	Migrations      int           `yaml:"migrations"`
}

// Report holds the statistics of a completed run.
type Report struct {
	RunID       string            `yaml:"run_id"`
	Graph       topology.Kind     `yaml:"graph"`
	TaskCount   int               `yaml:"tasks"`
	LBFrequency int               `yaml:"lb_frequency"`
	Units       int               `yaml:"units"`
	Iterations  []IterationRecord `yaml:"iterations"`
	Rebalances  []RebalanceRecord `yaml:"rebalances"`
	// Tasks[t][i] is task t's report for iteration i+1.
	Tasks [][]TaskReport `yaml:"tasks_detail,omitempty"`
}

func newReport(runID string, w workload.Workload, units int) *Report {
	r := &Report{
		RunID:       runID,
		Graph:       w.Graph(),
		TaskCount:   w.TaskCount(),
		LBFrequency: w.LBFrequency(),
		Units:       units,
		Iterations:  make([]IterationRecord, 0, w.IterationCount()),
		Rebalances:  make([]RebalanceRecord, 0, workload.RebalanceCount(w.IterationCount(), w.LBFrequency())),
		Tasks:       make([][]TaskReport, w.TaskCount()),
	}
	for t := range r.Tasks {
		r.Tasks[t] = make([]TaskReport, 0, w.IterationCount())
	}
	return r
}

func (r *Report) IterationTotal() time.Duration {
	var total time.Duration
	for _, it := range r.Iterations {
		total += it.Duration
	}
	return total
}

func (r *Report) PauseTotal() time.Duration {
	var total time.Duration
	for _, lb := range r.Rebalances {
		total += lb.Pause
	}
	return total
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// WriteText prints the iteration durations and rebalance pauses in
// milliseconds, followed by their totals. The rebalance lines are omitted
// when no rebalance happened.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "Iteration times ")
	for i, it := range r.Iterations {
		if i > 0 {
			fmt.Fprint(bw, ",")
		}
		fmt.Fprintf(bw, "%.1f ", millis(it.Duration))
	}
	fmt.Fprintf(bw, "\nIteration total time %.1f\n", millis(r.IterationTotal()))
	if len(r.Rebalances) > 0 {
		fmt.Fprint(bw, "LB times ")
		for _, lb := range r.Rebalances {
			fmt.Fprintf(bw, "%.1f ", millis(lb.Pause))
		}
		fmt.Fprintf(bw, "\nLB total time %.1f\n", millis(r.PauseTotal()))
	}
	return bw.Flush()
}

// WriteTaskTables prints one table per task attribute with a row per task
// and a column per iteration.
func (r *Report) WriteTaskTables(w io.Writer) error {
	bw := bufio.NewWriter(w)
	tables := []struct {
		title string
		cell  func(TaskReport) string
	}{
		{"Tasks' unit in each iteration", func(tr TaskReport) string { return fmt.Sprint(tr.Unit) }},
		{"Tasks' work time in each iteration", func(tr TaskReport) string { return fmt.Sprintf("%.1f", millis(tr.WorkTime)) }},
		{"Tasks' operation type in each iteration", func(tr TaskReport) string { return tr.Op.String()[:1] }},
		{"Tasks' load in each iteration", func(tr TaskReport) string { return fmt.Sprint(tr.Load) }},
		{"Tasks' sizes", func(tr TaskReport) string { return fmt.Sprint(tr.SizeBytes) }},
		{"Tasks' num messages sent in each iteration", func(tr TaskReport) string { return fmt.Sprint(tr.MessagesSent) }},
		{"Tasks' num messages received in each iteration", func(tr TaskReport) string { return fmt.Sprint(tr.MessagesReceived) }},
	}
	for i, table := range tables {
		fmt.Fprintf(bw, "%d. %s\n", i+1, table.title)
		for task, row := range r.Tasks {
			fmt.Fprintf(bw, "%d\t", task)
			for _, tr := range row {
				fmt.Fprintf(bw, "%s\t", table.cell(tr))
			}
			fmt.Fprintln(bw)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
