// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCalibrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure integer and floating-point operation rates",
		Long: `calibrate prints the measured rates in a form that can be pasted into the
calibration section of a config file to skip measurement on later runs.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().Duration("window", 0, "measurement window per correction")
	bindings := map[string]string{"calibration.window": "window"}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := a.load(cmd.Flags(), bindings); err != nil {
			return err
		}
		defer a.close()
		b, err := busyWork(cmd.Context(), a.cfg.Calibration, a.logger)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(map[string]any{"calibration": b})
	}
	return cmd
}
