// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim_test

import (
	"strings"
	"testing"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *lbsim.Report {
	return &lbsim.Report{
		TaskCount: 2,
		Iterations: []lbsim.IterationRecord{
			{Iteration: 1, Duration: 1500 * time.Microsecond},
			{Iteration: 2, Duration: 2 * time.Millisecond},
			{Iteration: 3, Duration: 250 * time.Microsecond},
		},
		Rebalances: []lbsim.RebalanceRecord{
			{Index: 0, BeforeIteration: 3, Pause: 300 * time.Microsecond},
		},
		Tasks: [][]lbsim.TaskReport{
			{{Task: 0, Iteration: 1, Unit: 1, WorkTime: time.Millisecond, Op: workload.Float, Load: 3, SizeBytes: 8, MessagesSent: 1, MessagesReceived: 2}},
			{{Task: 1, Iteration: 1, Unit: 0, WorkTime: 2 * time.Millisecond, Op: workload.Integer, Load: 4, SizeBytes: 8, MessagesSent: 2, MessagesReceived: 1}},
		},
	}
}

func TestReportWriteText(t *testing.T) {
	chk := require.New(t)
	var b strings.Builder
	chk.NoError(sampleReport().WriteText(&b))
	chk.Equal("Iteration times 1.5 ,2.0 ,0.2 \n"+
		"Iteration total time 3.8\n"+
		"LB times 0.3 \n"+
		"LB total time 0.3\n", b.String())
}

func TestReportWriteTextWithoutRebalances(t *testing.T) {
	chk := require.New(t)
	r := sampleReport()
	r.Rebalances = nil
	var b strings.Builder
	chk.NoError(r.WriteText(&b))
	chk.NotContains(b.String(), "LB")
}

func TestReportWriteTaskTables(t *testing.T) {
	chk := require.New(t)
	var b strings.Builder
	chk.NoError(sampleReport().WriteTaskTables(&b))
	out := b.String()
	chk.Contains(out, "1. Tasks' unit in each iteration\n0\t1\t\n1\t0\t\n")
	chk.Contains(out, "3. Tasks' operation type in each iteration\n0\tf\t\n1\ti\t\n")
	chk.Contains(out, "7. Tasks' num messages received in each iteration\n0\t2\t\n1\t1\t\n")
}

func TestReportYAML(t *testing.T) {
	chk := require.New(t)
	b, err := yaml.Marshal(sampleReport())
	chk.NoError(err)
	var decoded map[string]any
	chk.NoError(yaml.Unmarshal(b, &decoded))
	chk.Equal(2, decoded["tasks"])
	chk.Equal("ring", decoded["graph"])
	chk.Contains(string(b), "op: float")
}
