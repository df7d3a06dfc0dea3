// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"

	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
	"pgregory.net/rapid"
)

// Plan is a tabulated workload. Iteration indexes are zero-based in the
// tables and one-based everywhere else.
type Plan struct {
	Kind       topology.Kind
	Tasks      int
	Iterations int
	Frequency  int
	Topologies []topology.Topology

	Sizes  []int
	Loads  [][]int
	Float  [][]bool
	Counts [][][]int // task, iteration, receiver slot
	Bytes  [][][]int // task, iteration, receiver slot
}

// NewPlan draws a random plan within the bounds of cfg.
func NewPlan(t *rapid.T, cfg *Config) *Plan {
	kind := rapid.SampledFrom(cfg.Kinds).Draw(t, "kind")
	tasks := cfg.Tasks.Draw(t, "tasks")
	if kind == topology.Ring && tasks < 2 {
		tasks = 2
	}
	tops, err := topology.BuildAll(kind, tasks)
	if err != nil {
		panic(fmt.Sprintf("building %v topology for %d tasks: %v", kind, tasks, err))
	}
	p := &Plan{
		Kind:       kind,
		Tasks:      tasks,
		Iterations: cfg.Iterations.Draw(t, "iterations"),
		Frequency:  cfg.Frequency.Draw(t, "frequency"),
		Topologies: tops,
		Sizes:      make([]int, tasks),
		Loads:      make([][]int, tasks),
		Float:      make([][]bool, tasks),
		Counts:     make([][][]int, tasks),
		Bytes:      make([][][]int, tasks),
	}
	float := BiasedBool(cfg.FloatOps)
	for task := range tasks {
		p.Sizes[task] = cfg.Size.Draw(t, "size")
		p.Loads[task] = make([]int, p.Iterations)
		p.Float[task] = make([]bool, p.Iterations)
		p.Counts[task] = make([][]int, p.Iterations)
		p.Bytes[task] = make([][]int, p.Iterations)
		receivers := len(tops[task].Receivers)
		for i := range p.Iterations {
			p.Loads[task][i] = cfg.Load.Draw(t, "load")
			p.Float[task][i] = float.Draw(t, "float")
			p.Counts[task][i] = make([]int, receivers)
			p.Bytes[task][i] = make([]int, receivers)
			for slot := range receivers {
				p.Counts[task][i][slot] = cfg.Messages.Draw(t, "messages")
				p.Bytes[task][i][slot] = cfg.MessageSize.Draw(t, "messageSize")
			}
		}
	}
	return p
}

// Workload returns a [workload.Funcs] that replays the plan.
func (p *Plan) Workload() *workload.Funcs {
	return &workload.Funcs{
		Tasks:      p.Tasks,
		Iterations: p.Iterations,
		Frequency:  p.Frequency,
		Kind:       p.Kind,
		IntegerOpFunc: func(task, iteration int) bool {
			return !p.Float[task][iteration-1]
		},
		SizeFunc: func(task int) int { return p.Sizes[task] },
		LoadFunc: func(task, iteration, _ int) int {
			return p.Loads[task][iteration-1]
		},
		MessageCountFunc: func(task, iteration, slot int) int {
			return p.Counts[task][iteration-1][slot]
		},
		MessageSizeFunc: func(task, iteration, slot, _ int) int {
			return p.Bytes[task][iteration-1][slot]
		},
	}
}

// Sent returns how many messages task sends in the given iteration.
func (p *Plan) Sent(task, iteration int) int {
	n := 0
	for _, c := range p.Counts[task][iteration-1] {
		n += c
	}
	return n
}

// Received returns how many messages task receives in the given iteration.
func (p *Plan) Received(task, iteration int) int {
	top := p.Topologies[task]
	n := 0
	for i, sender := range top.Senders {
		n += p.Counts[sender][iteration-1][top.SenderSlots[i]]
	}
	return n
}

// Op returns the operation kind task uses in the given iteration.
func (p *Plan) Op(task, iteration int) workload.OpKind {
	if p.Float[task][iteration-1] {
		return workload.Float
	}
	return workload.Integer
}
