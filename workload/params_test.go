// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package workload_test

import (
	"testing"

	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultParams(t *testing.T) {
	chk := require.New(t)
	w, err := workload.DefaultParams().Workload()
	chk.NoError(err)
	chk.NoError(workload.Validate(w))
	chk.Equal(topology.Ring, w.Graph())
}

func TestParamsWorkload(t *testing.T) {
	chk := require.New(t)
	p := workload.Params{
		Tasks:         6,
		Iterations:    3,
		LBFrequency:   2,
		Graph:         "mesh2d",
		Mapping:       workload.MappingBlock,
		FloatEvery:    2,
		TaskSizeBytes: 128,
		Load:          workload.LoadParams{Base: 10, Skew: 5, Growth: -12},
		Messages:      workload.MessageParams{Count: 2, SizeBytes: 16},
	}
	w, err := p.Workload()
	chk.NoError(err)
	chk.Equal(topology.Mesh2D, w.Graph())
	chk.Equal(128, w.TaskSizeBytes(3))
	chk.Equal(2, w.MessageCount(0, 1, 0))
	chk.Equal(16, w.MessageSizeBytes(0, 1, 0, 1))
	chk.False(w.IsIntegerOp(1, 1))
	chk.True(w.IsIntegerOp(1, 2))

	b := workload.Bind(w, 2)
	for it, want := range []int{20, 8, 0} {
		load, err := b.Load(it + 1)
		chk.NoError(err)
		chk.Equal(want, load)
	}

	placement, err := workload.Placement(w, 3)
	chk.NoError(err)
	chk.Equal([]int{0, 0, 1, 1, 2, 2}, placement)
}

func TestParamsMappings(t *testing.T) {
	chk := require.New(t)
	p := workload.DefaultParams()
	p.Tasks = 4
	p.Mapping = workload.MappingCyclic
	w, err := p.Workload()
	chk.NoError(err)
	placement, err := workload.Placement(w, 3)
	chk.NoError(err)
	chk.Equal([]int{0, 1, 2, 0}, placement)

	p.Mapping = workload.MappingSingle
	w, err = p.Workload()
	chk.NoError(err)
	placement, err = workload.Placement(w, 3)
	chk.NoError(err)
	chk.Equal([]int{0, 0, 0, 0}, placement)
}

func TestParamsValidateCollectsEveryProblem(t *testing.T) {
	chk := require.New(t)
	p := workload.Params{
		Tasks:       0,
		Iterations:  0,
		LBFrequency: -1,
		Graph:       "torus",
		Mapping:     "random",
		Messages:    workload.MessageParams{Count: -1, SizeBytes: -1},
	}
	err := p.Validate()
	chk.ErrorIs(err, workload.ErrConfiguration)
	chk.ErrorIs(err, topology.ErrTopology)
	chk.Len(multierr.Errors(err), 7)

	_, err = p.Workload()
	chk.Error(err)
}
