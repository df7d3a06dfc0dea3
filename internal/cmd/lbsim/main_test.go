// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/petenewcomb/lbsim-go"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTopologyCommand(t *testing.T) {
	chk := require.New(t)
	out, err := execute(t, "topology", "--graph", "2d", "--tasks", "16", "--task", "5")
	chk.NoError(err)
	chk.Contains(out, "mesh2d graph, 16 tasks")
	chk.Contains(out, "task 5: receivers [1 6 9 4] senders [1 6 9 4] slots [1 3 0 1]")
	chk.NotContains(out, "task 4:")
}

func TestTopologyCommandRejectsBadGraph(t *testing.T) {
	_, err := execute(t, "topology", "--graph", "ring", "--tasks", "1")
	require.ErrorIs(t, err, lbsim.ErrTopology)
}

func TestRunCommand(t *testing.T) {
	chk := require.New(t)
	t.Setenv("LBSIM_WORKLOAD_LOAD_BASE", "1")
	t.Setenv("LBSIM_WORKLOAD_TASK_SIZE_BYTES", "8")
	t.Setenv("LBSIM_CALIBRATION_INT_OPS_PER_MS", "1000")
	t.Setenv("LBSIM_CALIBRATION_FLOAT_OPS_PER_MS", "1000")
	t.Setenv("LBSIM_LOGGING_LEVEL", "error")
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.yaml")
	chartPath := filepath.Join(dir, "run.svg")

	out, err := execute(t, "run",
		"--tasks", "4",
		"--iterations", "3",
		"--lb-frequency", "1",
		"--graph", "ring",
		"--units", "2",
		"--balancer", "round-robin",
		"--report", reportPath,
		"--chart", chartPath,
		"--task-tables",
	)
	chk.NoError(err)
	chk.Contains(out, "4 tasks, ring graph, 2 units, rebalance every 1")
	chk.Contains(out, "Iteration total time")
	chk.Contains(out, "LB total time")

	b, err := os.ReadFile(reportPath)
	chk.NoError(err)
	var report struct {
		Iterations []map[string]any `yaml:"iterations"`
		Rebalances []map[string]any `yaml:"rebalances"`
	}
	chk.NoError(yaml.Unmarshal(b, &report))
	chk.Len(report.Iterations, 3)
	chk.Len(report.Rebalances, 2)

	_, err = os.Stat(chartPath)
	chk.NoError(err)
}

func TestRunCommandConfigFile(t *testing.T) {
	chk := require.New(t)
	path := filepath.Join(t.TempDir(), "lbsim.yaml")
	chk.NoError(os.WriteFile(path, []byte(`
workload:
  tasks: 8
  iterations: 2
  lb_frequency: 5
  graph: 3d
  load:
    base: 0
calibration:
  int_ops_per_ms: 1000
  float_ops_per_ms: 1000
logging:
  level: error
`), 0o644))
	out, err := execute(t, "--config", path, "run", "--units", "1")
	chk.NoError(err)
	chk.Contains(out, "8 tasks, mesh3d graph, 1 units, rebalance every 5")
}

func TestRunCommandRejectsBadConfig(t *testing.T) {
	t.Setenv("LBSIM_LOGGING_LEVEL", "error")
	_, err := execute(t, "run", "--tasks", "0", "--balancer", "nope")
	require.ErrorIs(t, err, lbsim.ErrConfiguration)
}

func TestRunCommandTrace(t *testing.T) {
	chk := require.New(t)
	t.Setenv("LBSIM_WORKLOAD_LOAD_BASE", "0")
	t.Setenv("LBSIM_CALIBRATION_INT_OPS_PER_MS", "1000")
	t.Setenv("LBSIM_CALIBRATION_FLOAT_OPS_PER_MS", "1000")
	t.Setenv("LBSIM_LOGGING_LEVEL", "error")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"run", "--tasks", "2", "--iterations", "2", "--lb-frequency", "1", "--trace"})
	chk.NoError(cmd.ExecuteContext(context.Background()))
	chk.Contains(errOut.String(), `"Name": "iteration"`)
	chk.Contains(errOut.String(), `"Name": "compute"`)
	chk.Contains(errOut.String(), `"Name": "balance"`)
}
