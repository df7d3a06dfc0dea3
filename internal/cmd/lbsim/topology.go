// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"io"

	"github.com/petenewcomb/lbsim-go/internal/config"
	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/spf13/cobra"
)

func newTopologyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Print the senders and receivers of each task",
		Args:  cobra.NoArgs,
	}
	d := config.Default()
	f := cmd.Flags()
	f.Int("tasks", d.Workload.Tasks, "number of tasks")
	f.String("graph", d.Workload.Graph, "communication graph: ring, 2d, or 3d")
	task := f.Int("task", -1, "print only this task")
	bindings := map[string]string{
		"workload.tasks": "tasks",
		"workload.graph": "graph",
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := a.load(cmd.Flags(), bindings); err != nil {
			return err
		}
		defer a.close()
		kind, err := topology.ParseKind(a.cfg.Workload.Graph)
		if err != nil {
			return err
		}
		return printTopology(cmd.OutOrStdout(), kind, a.cfg.Workload.Tasks, *task)
	}
	return cmd
}

func printTopology(w io.Writer, kind topology.Kind, tasks, only int) error {
	tops, err := topology.BuildAll(kind, tasks)
	if err != nil {
		return err
	}
	if only >= tasks {
		return topology.ErrTopology.Errorf("task %d out of range for %d tasks", only, tasks)
	}
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%v graph, %d tasks", kind, tasks)))
	for id, top := range tops {
		if only >= 0 && id != only {
			continue
		}
		if _, err := fmt.Fprintf(w, "task %d: receivers %v senders %v slots %v\n",
			id, top.Receivers, top.Senders, top.SenderSlots); err != nil {
			return err
		}
	}
	return nil
}
