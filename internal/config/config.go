// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package config loads the lbsim command's settings from defaults, an
// optional YAML file, and LBSIM_* environment variables, in increasing order
// of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/calibrate"
	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "LBSIM"

type Config struct {
	Workload    workload.Params   `mapstructure:"workload" yaml:"workload"`
	Runtime     RuntimeConfig     `mapstructure:"runtime" yaml:"runtime"`
	Calibration CalibrationConfig `mapstructure:"calibration" yaml:"calibration"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
}

// RuntimeConfig describes the simulated machine.
type RuntimeConfig struct {
	// Units is the number of execution units.
	Units int `mapstructure:"units" yaml:"units"`
	// UnitSlots is how many tasks may compute on a unit at once; -1 for no
	// limit.
	UnitSlots int `mapstructure:"unit_slots" yaml:"unit_slots"`
	// Balancer is one of "keep", "greedy", "round-robin".
	Balancer string `mapstructure:"balancer" yaml:"balancer"`
}

// CalibrationConfig controls the busy-work calibration. Non-zero operation
// rates skip measurement for that operation kind.
type CalibrationConfig struct {
	calibrate.Config `mapstructure:",squash" yaml:",inline"`
	IntOpsPerMs      float64 `mapstructure:"int_ops_per_ms" yaml:"int_ops_per_ms"`
	FloatOpsPerMs    float64 `mapstructure:"float_ops_per_ms" yaml:"float_ops_per_ms"`
}

type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

type OutputConfig struct {
	// ReportPath, if set, receives the full report as YAML.
	ReportPath string `mapstructure:"report_path" yaml:"report_path"`
	// ChartPath, if set, receives a bar chart of iteration and pause times.
	// The format follows the extension (png, svg, pdf).
	ChartPath  string `mapstructure:"chart_path" yaml:"chart_path"`
	TaskTables bool   `mapstructure:"task_tables" yaml:"task_tables"`
	// Trace exports OpenTelemetry spans to stdout.
	Trace bool `mapstructure:"trace" yaml:"trace"`
}

func Default() *Config {
	return &Config{
		Workload: workload.DefaultParams(),
		Runtime: RuntimeConfig{
			Units:     4,
			UnitSlots: 1,
			Balancer:  "greedy",
		},
		Calibration: CalibrationConfig{
			Config: calibrate.Config{
				Window:      calibrate.DefaultWindow,
				Corrections: calibrate.DefaultCorrections,
			},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// SetDefaults registers every key with its default so that environment
// variables are honored for all of them.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("workload.tasks", d.Workload.Tasks)
	v.SetDefault("workload.iterations", d.Workload.Iterations)
	v.SetDefault("workload.lb_frequency", d.Workload.LBFrequency)
	v.SetDefault("workload.graph", d.Workload.Graph)
	v.SetDefault("workload.mapping", string(d.Workload.Mapping))
	v.SetDefault("workload.float_every", d.Workload.FloatEvery)
	v.SetDefault("workload.task_size_bytes", d.Workload.TaskSizeBytes)
	v.SetDefault("workload.load.base", d.Workload.Load.Base)
	v.SetDefault("workload.load.skew", d.Workload.Load.Skew)
	v.SetDefault("workload.load.growth", d.Workload.Load.Growth)
	v.SetDefault("workload.messages.count", d.Workload.Messages.Count)
	v.SetDefault("workload.messages.size_bytes", d.Workload.Messages.SizeBytes)

	v.SetDefault("runtime.units", d.Runtime.Units)
	v.SetDefault("runtime.unit_slots", d.Runtime.UnitSlots)
	v.SetDefault("runtime.balancer", d.Runtime.Balancer)

	v.SetDefault("calibration.window", d.Calibration.Window)
	v.SetDefault("calibration.corrections", d.Calibration.Corrections)
	v.SetDefault("calibration.int_ops_per_ms", d.Calibration.IntOpsPerMs)
	v.SetDefault("calibration.float_ops_per_ms", d.Calibration.FloatOpsPerMs)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)

	v.SetDefault("output.report_path", d.Output.ReportPath)
	v.SetDefault("output.chart_path", d.Output.ChartPath)
	v.SetDefault("output.task_tables", d.Output.TaskTables)
	v.SetDefault("output.trace", d.Output.Trace)
}

// New returns a viper instance with defaults and environment binding set up,
// reading configFile if it is not empty.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", workload.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns every problem with c.
func (c *Config) Validate() error {
	err := c.Workload.Validate()
	if c.Runtime.Units < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: runtime.units must be positive, got %d", workload.ErrConfiguration, c.Runtime.Units))
	}
	if c.Runtime.UnitSlots == 0 || c.Runtime.UnitSlots < -1 {
		err = multierr.Append(err, fmt.Errorf("%w: runtime.unit_slots must be positive or -1, got %d", workload.ErrConfiguration, c.Runtime.UnitSlots))
	}
	if _, berr := lbsim.ParseBalancer(c.Runtime.Balancer); berr != nil {
		err = multierr.Append(err, berr)
	}
	if c.Calibration.Window < time.Millisecond {
		err = multierr.Append(err, fmt.Errorf("%w: calibration.window must be at least 1ms, got %v", workload.ErrConfiguration, c.Calibration.Window))
	}
	if c.Calibration.Corrections < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: calibration.corrections must not be negative", workload.ErrConfiguration))
	}
	if c.Calibration.IntOpsPerMs < 0 || c.Calibration.FloatOpsPerMs < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: operation rates must not be negative", workload.ErrConfiguration))
	}
	if _, lerr := zapcore.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: logging.level: %v", workload.ErrConfiguration, lerr))
	}
	return err
}
