// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package workload defines the oracle that shapes a benchmark run: how many
// tasks and iterations there are, how the tasks are connected, and per task
// and iteration how much computation to simulate and how many messages of
// what size to send to each receiver.
//
// A [Workload] is a pure function table. Loads may be defined recursively in
// terms of the previous iteration's load; [Binding] carries the per-task
// memo needed to evaluate such definitions incrementally.
package workload

import (
	"fmt"

	"github.com/petenewcomb/lbsim-go/internal/cerr"
	"github.com/petenewcomb/lbsim-go/topology"
	"go.uber.org/multierr"
)

// ErrConfiguration is returned (wrapped) when a workload definition is
// malformed or yields values that cannot be simulated.
const ErrConfiguration = cerr.Error("configuration error")

// OpKind selects the kind of arithmetic performed by simulated work.
type OpKind int

const (
	Integer OpKind = iota
	Float
)

func (k OpKind) String() string {
	switch k {
	case Integer:
		return "int"
	case Float:
		return "float"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Workload is the oracle consulted by tasks and the coordinator. All methods
// must be pure: the same arguments always produce the same result.
type Workload interface {
	TaskCount() int
	IterationCount() int
	LBFrequency() int
	Graph() topology.Kind

	// InitialPlacement returns the execution unit, in [0, units), on which
	// task starts.
	InitialPlacement(task, units int) int

	IsIntegerOp(task, iteration int) bool
	TaskSizeBytes(task int) int

	// Load returns the compute load of task in the given iteration. previous
	// is the task's load in the preceding iteration, or zero for iteration 1.
	Load(task, iteration, previous int) int

	// MessageCount returns how many messages task sends in the given
	// iteration to the receiver occupying receiverSlot in its receiver list.
	MessageCount(task, iteration, receiverSlot int) int

	// MessageSizeBytes returns the payload size of one of those messages.
	MessageSizeBytes(task, iteration, receiverSlot, message int) int
}

// Validate checks the run-level parameters of w, returning every problem
// found.
func Validate(w Workload) error {
	var err error
	if n := w.IterationCount(); n < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: iteration count must be positive, got %d", ErrConfiguration, n))
	}
	if f := w.LBFrequency(); f < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: rebalance frequency must be positive, got %d", ErrConfiguration, f))
	}
	err = multierr.Append(err, topology.Validate(w.Graph(), w.TaskCount()))
	for task := range max(w.TaskCount(), 0) {
		if size := w.TaskSizeBytes(task); size < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: task %d has negative size %d", ErrConfiguration, task, size))
		}
	}
	return err
}

// Op returns the kind of operation task performs in the given iteration.
func Op(w Workload, task, iteration int) OpKind {
	if w.IsIntegerOp(task, iteration) {
		return Integer
	}
	return Float
}

// Placement evaluates the initial placement of every task on units execution
// units.
func Placement(w Workload, units int) ([]int, error) {
	if units < 1 {
		return nil, fmt.Errorf("%w: need at least one execution unit, got %d", ErrConfiguration, units)
	}
	placement := make([]int, w.TaskCount())
	for task := range placement {
		u := w.InitialPlacement(task, units)
		if u < 0 || u >= units {
			return nil, fmt.Errorf("%w: task %d placed on unit %d, want [0,%d)", ErrConfiguration, task, u, units)
		}
		placement[task] = u
	}
	return placement, nil
}

// RebalanceCount returns how many rebalance passes a run of the given number
// of iterations performs when rebalancing every frequency iterations. No pass
// happens before the first iteration or after the last one.
func RebalanceCount(iterations, frequency int) int {
	if frequency < 1 {
		return 0
	}
	if iterations%frequency == 0 {
		return iterations/frequency - 1
	}
	return iterations / frequency
}

// RebalanceDue reports whether a rebalance pass precedes the given iteration.
func RebalanceDue(iteration, frequency int) bool {
	return frequency > 0 && iteration != 1 && (iteration-1)%frequency == 0
}

func (k OpKind) MarshalText() ([]byte, error) {
	switch k {
	case Integer, Float:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("%w: unknown operation kind %d", ErrConfiguration, int(k))
}

func (k *OpKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "int", "integer":
		*k = Integer
	case "float":
		*k = Float
	default:
		return fmt.Errorf("%w: unknown operation kind %q", ErrConfiguration, b)
	}
	return nil
}
