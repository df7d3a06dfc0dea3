// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package workload_test

import (
	"testing"

	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRebalanceSchedule(t *testing.T) {
	chk := require.New(t)
	var due []int
	for it := 1; it <= 10; it++ {
		if workload.RebalanceDue(it, 3) {
			due = append(due, it)
		}
	}
	chk.Equal([]int{4, 7, 10}, due)
	chk.Equal(3, workload.RebalanceCount(10, 3))
	chk.Equal(2, workload.RebalanceCount(9, 3))
	chk.Equal(0, workload.RebalanceCount(2, 5))
	chk.Equal(0, workload.RebalanceCount(2, 2))
}

func TestRebalanceCountMatchesSchedule(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := rapid.IntRange(1, 500).Draw(t, "iterations")
		f := rapid.IntRange(1, 50).Draw(t, "frequency")
		count := 0
		for it := 1; it <= r; it++ {
			if workload.RebalanceDue(it, f) {
				count++
			}
		}
		require.Equal(t, count, workload.RebalanceCount(r, f))
	})
}

func TestBindingMemoizesRecursiveLoad(t *testing.T) {
	chk := require.New(t)
	calls := 0
	w := &workload.Funcs{
		Tasks: 2, Iterations: 5, Frequency: 10, Kind: topology.Ring,
		LoadFunc: func(task, iteration, previous int) int {
			calls++
			if iteration == 1 {
				return task + 1
			}
			return previous * 2
		},
	}
	b := workload.Bind(w, 1)
	for it, want := range []int{2, 4, 8, 16, 32} {
		got, err := b.Load(it + 1)
		chk.NoError(err)
		chk.Equal(want, got)
	}
	chk.Equal(5, calls)

	// Repeating the memoized iteration costs nothing.
	got, err := b.Load(5)
	chk.NoError(err)
	chk.Equal(32, got)
	chk.Equal(5, calls)

	// Going backwards replays from the start.
	got, err = b.Load(3)
	chk.NoError(err)
	chk.Equal(8, got)
	chk.Equal(8, calls)

	// A restored memo resumes from where it left off.
	other := workload.Bind(w, 1)
	other.Restore(workload.Memo{Iteration: 4, Load: 16})
	got, err = other.Load(5)
	chk.NoError(err)
	chk.Equal(32, got)
	chk.Equal(9, calls)
}

func TestBindingRejectsNegativeValues(t *testing.T) {
	chk := require.New(t)
	w := &workload.Funcs{
		Tasks: 3, Iterations: 2, Frequency: 1, Kind: topology.Ring,
		LoadFunc:         func(int, int, int) int { return -1 },
		MessageCountFunc: func(int, int, int) int { return -2 },
		MessageSizeFunc:  func(int, int, int, int) int { return -3 },
	}
	b := workload.Bind(w, 0)
	_, err := b.Load(1)
	chk.ErrorIs(err, workload.ErrConfiguration)
	_, err = b.Load(0)
	chk.ErrorIs(err, workload.ErrConfiguration)
	_, err = b.MessageCount(1, 0)
	chk.ErrorIs(err, workload.ErrConfiguration)
	_, err = b.MessageSize(1, 0, 0)
	chk.ErrorIs(err, workload.ErrConfiguration)
	top, err := topology.Build(topology.Ring, 3, 0)
	chk.NoError(err)
	_, err = b.ExpectedIncoming(top, 1)
	chk.ErrorIs(err, workload.ErrConfiguration)
}

func TestExpectedIncomingUsesSenderSlots(t *testing.T) {
	chk := require.New(t)
	// Each task sends slot+1 messages to the receiver in that slot.
	w := &workload.Funcs{
		Tasks: 9, Iterations: 1, Frequency: 1, Kind: topology.Mesh2D,
		MessageCountFunc: func(task, iteration, slot int) int { return slot + 1 },
	}
	all, err := topology.BuildAll(w.Graph(), w.TaskCount())
	chk.NoError(err)
	sent := make([]int, w.TaskCount())
	for task, top := range all {
		for slot, r := range top.Receivers {
			sent[r] += w.MessageCount(task, 1, slot)
		}
	}
	for task, top := range all {
		expected, err := workload.Bind(w, task).ExpectedIncoming(top, 1)
		chk.NoError(err)
		chk.Equal(sent[task], expected, "task %d", task)
	}
}

func TestValidate(t *testing.T) {
	chk := require.New(t)
	chk.NoError(workload.Validate(&workload.Funcs{Tasks: 4, Iterations: 1, Frequency: 1, Kind: topology.Ring}))

	err := workload.Validate(&workload.Funcs{Tasks: 1, Iterations: 0, Frequency: 0, Kind: topology.Ring})
	chk.ErrorIs(err, workload.ErrConfiguration)
	chk.ErrorIs(err, topology.ErrTopology)

	err = workload.Validate(&workload.Funcs{
		Tasks: 4, Iterations: 1, Frequency: 1, Kind: topology.Mesh2D,
		SizeFunc: func(task int) int { return -task },
	})
	chk.ErrorIs(err, workload.ErrConfiguration)
}

func TestPlacement(t *testing.T) {
	chk := require.New(t)
	w := &workload.Funcs{Tasks: 5, Iterations: 1, Frequency: 1, Kind: topology.Ring}
	p, err := workload.Placement(w, 2)
	chk.NoError(err)
	chk.Equal([]int{0, 1, 0, 1, 0}, p)

	_, err = workload.Placement(w, 0)
	chk.ErrorIs(err, workload.ErrConfiguration)

	w.PlacementFunc = func(task, units int) int { return units }
	_, err = workload.Placement(w, 2)
	chk.ErrorIs(err, workload.ErrConfiguration)
}

func TestOpKindText(t *testing.T) {
	chk := require.New(t)
	for _, k := range []workload.OpKind{workload.Integer, workload.Float} {
		b, err := k.MarshalText()
		chk.NoError(err)
		var got workload.OpKind
		chk.NoError(got.UnmarshalText(b))
		chk.Equal(k, got)
	}
	var k workload.OpKind
	chk.ErrorIs(k.UnmarshalText([]byte("double")), workload.ErrConfiguration)
	_, err := workload.OpKind(7).MarshalText()
	chk.ErrorIs(err, workload.ErrConfiguration)
}
