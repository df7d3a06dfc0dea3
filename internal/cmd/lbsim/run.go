// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/calibrate"
	"github.com/petenewcomb/lbsim-go/internal/chart"
	"github.com/petenewcomb/lbsim-go/internal/config"
	"github.com/petenewcomb/lbsim-go/otlbsim"
	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/spf13/cobra"
	"github.com/uber-go/tally/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark and print iteration and rebalance times",
		Args:  cobra.NoArgs,
	}
	d := config.Default()
	f := cmd.Flags()
	f.Int("tasks", d.Workload.Tasks, "number of tasks")
	f.Int("iterations", d.Workload.Iterations, "number of iterations")
	f.Int("lb-frequency", d.Workload.LBFrequency, "rebalance every this many iterations")
	f.String("graph", d.Workload.Graph, "communication graph: ring, 2d, or 3d")
	f.Int("units", d.Runtime.Units, "number of execution units")
	f.String("balancer", d.Runtime.Balancer, "keep, greedy, or round-robin")
	f.String("report", "", "write the full report as YAML to this file")
	f.String("chart", "", "write a bar chart of the run to this file")
	f.Bool("task-tables", false, "print per-task tables")
	f.Bool("trace", false, "export spans to stderr")
	bindings := map[string]string{
		"workload.tasks":        "tasks",
		"workload.iterations":   "iterations",
		"workload.lb_frequency": "lb-frequency",
		"workload.graph":        "graph",
		"runtime.units":         "units",
		"runtime.balancer":      "balancer",
		"output.report_path":    "report",
		"output.chart_path":     "chart",
		"output.task_tables":    "task-tables",
		"output.trace":          "trace",
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := a.load(cmd.Flags(), bindings); err != nil {
			return err
		}
		defer a.close()
		return a.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	return cmd
}

func (a *app) run(ctx context.Context, out, errOut io.Writer) error {
	cfg := a.cfg
	w, err := cfg.Workload.Workload()
	if err != nil {
		return err
	}
	balancer, err := lbsim.ParseBalancer(cfg.Runtime.Balancer)
	if err != nil {
		return err
	}
	work, err := busyWork(ctx, cfg.Calibration, a.logger)
	if err != nil {
		return err
	}

	tracer, shutdown, err := newTracer(cfg.Output.Trace, errOut)
	if err != nil {
		return err
	}
	defer shutdown()

	simulate := lbsim.WorkFunc(work.Simulate)
	if tracer != nil {
		simulate = otlbsim.InstrumentedWork("compute", simulate)
		balancer = otlbsim.InstrumentedBalancer("balance", balancer)
	}

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Reporter:  &logReporter{logger: a.logger},
		Separator: tally.DefaultSeparator,
	}, 0)
	defer closer.Close()

	report, err := lbsim.Run(ctx, w, &lbsim.Options{
		Units:     cfg.Runtime.Units,
		UnitSlots: cfg.Runtime.UnitSlots,
		Work:      simulate,
		Balancer:  balancer,
		Logger:    a.logger,
		Scope:     scope,
		Tracer:    tracer,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("run %s: %d tasks, %v graph, %d units, rebalance every %d",
		report.RunID, report.TaskCount, report.Graph, report.Units, report.LBFrequency)))
	if err := report.WriteText(out); err != nil {
		return err
	}
	if cfg.Output.TaskTables {
		if err := report.WriteTaskTables(out); err != nil {
			return err
		}
	}
	if path := cfg.Output.ReportPath; path != "" {
		b, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return err
		}
		a.logger.Info("wrote report", zap.String("path", path))
	}
	if path := cfg.Output.ChartPath; path != "" {
		if err := chart.Save(report, path); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
		a.logger.Info("wrote chart", zap.String("path", path))
	}
	return nil
}

// busyWork returns calibrated busy work, measuring only the operation kinds
// whose rates are not configured.
func busyWork(ctx context.Context, c config.CalibrationConfig, logger *zap.Logger) (calibrate.BusyWork, error) {
	b := calibrate.BusyWork{IntOpsPerMs: c.IntOpsPerMs, FloatOpsPerMs: c.FloatOpsPerMs}
	var err error
	if b.IntOpsPerMs == 0 {
		if b.IntOpsPerMs, err = calibrate.OpsPerMillisecond(ctx, workload.Integer, c.Config); err != nil {
			return b, err
		}
	}
	if b.FloatOpsPerMs == 0 {
		if b.FloatOpsPerMs, err = calibrate.OpsPerMillisecond(ctx, workload.Float, c.Config); err != nil {
			return b, err
		}
	}
	logger.Info("calibrated",
		zap.Float64("intOpsPerMs", b.IntOpsPerMs),
		zap.Float64("floatOpsPerMs", b.FloatOpsPerMs))
	return b, nil
}

// newTracer installs a global tracer provider exporting to w when enabled and
// returns a tracer from it. It returns a nil tracer when disabled.
func newTracer(enabled bool, w io.Writer) (trace.Tracer, func(), error) {
	if !enabled {
		return nil, func() {}, nil
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	return tp.Tracer("github.com/petenewcomb/lbsim-go"), func() {
		_ = tp.Shutdown(context.Background())
	}, nil
}
