// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package workload

import (
	"fmt"
	"strings"

	"github.com/petenewcomb/lbsim-go/topology"
	"go.uber.org/multierr"
)

// Mapping names an initial placement strategy.
type Mapping string

const (
	MappingBlock  Mapping = "block"  // contiguous runs of tasks per unit
	MappingCyclic Mapping = "cyclic" // task i on unit i mod units
	MappingSingle Mapping = "single" // everything on unit 0
)

// Params describes a workload declaratively so that it can be loaded from a
// configuration file.
type Params struct {
	Tasks         int           `mapstructure:"tasks" yaml:"tasks"`
	Iterations    int           `mapstructure:"iterations" yaml:"iterations"`
	LBFrequency   int           `mapstructure:"lb_frequency" yaml:"lb_frequency"`
	Graph         string        `mapstructure:"graph" yaml:"graph"`
	Mapping       Mapping       `mapstructure:"mapping" yaml:"mapping"`
	FloatEvery    int           `mapstructure:"float_every" yaml:"float_every"`
	TaskSizeBytes int           `mapstructure:"task_size_bytes" yaml:"task_size_bytes"`
	Load          LoadParams    `mapstructure:"load" yaml:"load"`
	Messages      MessageParams `mapstructure:"messages" yaml:"messages"`
}

// LoadParams define load(t, 1) = Base + Skew*t and
// load(t, i) = max(0, load(t, i-1) + Growth) for i > 1.
type LoadParams struct {
	Base   int `mapstructure:"base" yaml:"base"`
	Skew   int `mapstructure:"skew" yaml:"skew"`
	Growth int `mapstructure:"growth" yaml:"growth"`
}

// MessageParams define a uniform message pattern: every task sends Count
// messages of SizeBytes bytes to each receiver every iteration.
type MessageParams struct {
	Count     int `mapstructure:"count" yaml:"count"`
	SizeBytes int `mapstructure:"size_bytes" yaml:"size_bytes"`
}

// DefaultParams returns a small ring workload.
func DefaultParams() Params {
	return Params{
		Tasks:         8,
		Iterations:    10,
		LBFrequency:   5,
		Graph:         topology.Ring.String(),
		Mapping:       MappingBlock,
		TaskSizeBytes: 1024,
		Load:          LoadParams{Base: 10},
		Messages:      MessageParams{Count: 1, SizeBytes: 64},
	}
}

// Validate returns every problem with p.
func (p Params) Validate() error {
	var err error
	if p.Tasks < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: tasks must be positive, got %d", ErrConfiguration, p.Tasks))
	}
	if p.Iterations < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: iterations must be positive, got %d", ErrConfiguration, p.Iterations))
	}
	if p.LBFrequency < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: lb_frequency must be positive, got %d", ErrConfiguration, p.LBFrequency))
	}
	if kind, kerr := topology.ParseKind(p.Graph); kerr != nil {
		err = multierr.Append(err, kerr)
	} else if p.Tasks >= 1 {
		err = multierr.Append(err, topology.Validate(kind, p.Tasks))
	}
	if _, merr := p.Mapping.placer(); merr != nil {
		err = multierr.Append(err, merr)
	}
	if p.FloatEvery < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: float_every must not be negative, got %d", ErrConfiguration, p.FloatEvery))
	}
	if p.TaskSizeBytes < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: task_size_bytes must not be negative, got %d", ErrConfiguration, p.TaskSizeBytes))
	}
	if p.Load.Base < 0 || p.Load.Base+p.Load.Skew*(p.Tasks-1) < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: initial loads must not be negative", ErrConfiguration))
	}
	if p.Messages.Count < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: messages.count must not be negative, got %d", ErrConfiguration, p.Messages.Count))
	}
	if p.Messages.SizeBytes < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: messages.size_bytes must not be negative, got %d", ErrConfiguration, p.Messages.SizeBytes))
	}
	return err
}

// Workload validates p and returns the equivalent function table.
func (p Params) Workload() (*Funcs, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	kind, _ := topology.ParseKind(p.Graph)
	place, _ := p.Mapping.placer()
	tasks := p.Tasks
	return &Funcs{
		Tasks:         p.Tasks,
		Iterations:    p.Iterations,
		Frequency:     p.LBFrequency,
		Kind:          kind,
		PlacementFunc: func(task, units int) int { return place(task, tasks, units) },
		IntegerOpFunc: func(task, iteration int) bool {
			return p.FloatEvery == 0 || (task+iteration)%p.FloatEvery != 0
		},
		SizeFunc: func(int) int { return p.TaskSizeBytes },
		LoadFunc: func(task, iteration, previous int) int {
			if iteration == 1 {
				return p.Load.Base + p.Load.Skew*task
			}
			return max(0, previous+p.Load.Growth)
		},
		MessageCountFunc: func(int, int, int) int { return p.Messages.Count },
		MessageSizeFunc:  func(int, int, int, int) int { return p.Messages.SizeBytes },
	}, nil
}

func (m Mapping) placer() (func(task, tasks, units int) int, error) {
	switch Mapping(strings.ToLower(string(m))) {
	case MappingBlock, "":
		return func(task, tasks, units int) int {
			return task * units / tasks
		}, nil
	case MappingCyclic:
		return func(task, _, units int) int {
			return task % units
		}, nil
	case MappingSingle:
		return func(int, int, int) int {
			return 0
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown mapping %q", ErrConfiguration, string(m))
}
