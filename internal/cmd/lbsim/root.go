// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/petenewcomb/lbsim-go/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// app carries state shared by the subcommands.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lbsim",
		Short: "Synthetic distributed workload generator for load-balancing studies",
		Long: `lbsim runs a fixed number of tasks connected by a ring, 2D mesh, or 3D mesh
through repeated compute/exchange iterations, pausing periodically so that a
load balancer can move tasks between execution units. It reports each
iteration's duration and each rebalance pause.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "YAML config file")
	root.AddCommand(
		newRunCmd(a),
		newTopologyCmd(a),
		newCalibrateCmd(a),
	)
	return root
}

// load reads the configuration, letting any of the given flags that were set
// on the command line override it, and builds the logger.
func (a *app) load(flags *pflag.FlagSet, bindings map[string]string) error {
	v, err := config.New(a.configFile)
	if err != nil {
		return err
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newLogger(c config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
