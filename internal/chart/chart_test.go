// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package chart_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/internal/chart"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	chk := require.New(t)
	r := &lbsim.Report{
		TaskCount: 4,
		Units:     2,
		Iterations: []lbsim.IterationRecord{
			{Iteration: 1, Duration: time.Millisecond, Elapsed: 2 * time.Millisecond},
			{Iteration: 2, Duration: 3 * time.Millisecond, Elapsed: 4 * time.Millisecond},
		},
		Rebalances: []lbsim.RebalanceRecord{{BeforeIteration: 2, Pause: time.Millisecond}},
	}
	path := filepath.Join(t.TempDir(), "out", "run.svg")
	chk.NoError(chart.Save(r, path))
	info, err := os.Stat(path)
	chk.NoError(err)
	chk.Positive(info.Size())
}

func TestPlotEmptyReport(t *testing.T) {
	_, err := chart.Plot(&lbsim.Report{})
	require.Error(t, err)
}
