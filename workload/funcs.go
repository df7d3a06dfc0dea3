// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package workload

import "github.com/petenewcomb/lbsim-go/topology"

// Funcs is a [Workload] assembled from plain functions. Nil functions
// default to: cyclic placement, integer operations, zero size, zero load, and
// no messages.
type Funcs struct {
	Tasks      int
	Iterations int
	Frequency  int
	Kind       topology.Kind

	PlacementFunc    func(task, units int) int
	IntegerOpFunc    func(task, iteration int) bool
	SizeFunc         func(task int) int
	LoadFunc         func(task, iteration, previous int) int
	MessageCountFunc func(task, iteration, receiverSlot int) int
	MessageSizeFunc  func(task, iteration, receiverSlot, message int) int
}

var _ Workload = (*Funcs)(nil)

func (f *Funcs) TaskCount() int       { return f.Tasks }
func (f *Funcs) IterationCount() int  { return f.Iterations }
func (f *Funcs) LBFrequency() int     { return f.Frequency }
func (f *Funcs) Graph() topology.Kind { return f.Kind }

func (f *Funcs) InitialPlacement(task, units int) int {
	if f.PlacementFunc == nil {
		return task % units
	}
	return f.PlacementFunc(task, units)
}

func (f *Funcs) IsIntegerOp(task, iteration int) bool {
	if f.IntegerOpFunc == nil {
		return true
	}
	return f.IntegerOpFunc(task, iteration)
}

func (f *Funcs) TaskSizeBytes(task int) int {
	if f.SizeFunc == nil {
		return 0
	}
	return f.SizeFunc(task)
}

func (f *Funcs) Load(task, iteration, previous int) int {
	if f.LoadFunc == nil {
		return 0
	}
	return f.LoadFunc(task, iteration, previous)
}

func (f *Funcs) MessageCount(task, iteration, receiverSlot int) int {
	if f.MessageCountFunc == nil {
		return 0
	}
	return f.MessageCountFunc(task, iteration, receiverSlot)
}

func (f *Funcs) MessageSizeBytes(task, iteration, receiverSlot, message int) int {
	if f.MessageSizeFunc == nil {
		return 0
	}
	return f.MessageSizeFunc(task, iteration, receiverSlot, message)
}
