// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package calibrate measures how many synthetic operations this machine
// performs per millisecond and uses the measurement to burn CPU for a
// requested number of milliseconds.
package calibrate

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/petenewcomb/lbsim-go/internal/cerr"
	"github.com/petenewcomb/lbsim-go/workload"
)

const ErrCalibration = cerr.Error("calibration failed")

const (
	DefaultWindow      = 50 * time.Millisecond
	DefaultCorrections = 5

	// batch is the number of repetitions run between clock reads while
	// estimating the first guess.
	batch = 5
)

// Config controls a calibration run. Zero fields take their defaults.
type Config struct {
	Window      time.Duration `mapstructure:"window" yaml:"window"`
	Corrections int           `mapstructure:"corrections" yaml:"corrections"`
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Corrections < 0 {
		c.Corrections = 0
	} else if c.Corrections == 0 {
		c.Corrections = DefaultCorrections
	}
	return c
}

// OpsPerMillisecond estimates the number of operations of the given kind
// executed per millisecond. It counts repetitions completed within one
// window and then reruns that many repetitions, rescaling the count by how
// far each rerun missed the window.
func OpsPerMillisecond(ctx context.Context, kind workload.OpKind, cfg Config) (float64, error) {
	cfg = cfg.withDefaults()
	op, err := opFor(kind)
	if err != nil {
		return 0, err
	}

	reps := 0
	deadline := time.Now().Add(cfg.Window)
	for time.Now().Before(deadline) {
		op(batch)
		reps += batch
	}

	for range cfg.Corrections {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		start := time.Now()
		op(reps)
		elapsed := time.Since(start)
		if elapsed <= 0 {
			continue
		}
		scaled := float64(reps) * float64(cfg.Window) / float64(elapsed)
		reps = int(math.Max(1, math.Min(scaled, math.MaxInt32)))
	}

	return float64(reps) * float64(time.Millisecond) / float64(cfg.Window), nil
}

// BusyWork burns CPU for a number of milliseconds using previously measured
// operation rates.
type BusyWork struct {
	IntOpsPerMs   float64 `yaml:"int_ops_per_ms"`
	FloatOpsPerMs float64 `yaml:"float_ops_per_ms"`
}

// Measure calibrates both operation kinds.
func Measure(ctx context.Context, cfg Config) (BusyWork, error) {
	var b BusyWork
	var err error
	if b.IntOpsPerMs, err = OpsPerMillisecond(ctx, workload.Integer, cfg); err != nil {
		return BusyWork{}, err
	}
	if b.FloatOpsPerMs, err = OpsPerMillisecond(ctx, workload.Float, cfg); err != nil {
		return BusyWork{}, err
	}
	return b, nil
}

// Simulate runs batches of operations of the given kind until load
// milliseconds have elapsed, returning the time actually spent. Each batch
// holds roughly one millisecond of work, so overshoot stays small and
// cancellation is noticed promptly.
func (b BusyWork) Simulate(ctx context.Context, load int, kind workload.OpKind) (time.Duration, error) {
	op, err := opFor(kind)
	if err != nil {
		return 0, err
	}
	rate := b.IntOpsPerMs
	if kind == workload.Float {
		rate = b.FloatOpsPerMs
	}
	perBatch := max(1, int(rate))

	start := time.Now()
	end := start.Add(time.Duration(load) * time.Millisecond)
	for time.Now().Before(end) {
		if err := ctx.Err(); err != nil {
			return time.Since(start), err
		}
		op(perBatch)
	}
	return time.Since(start), nil
}

func opFor(kind workload.OpKind) (func(reps int), error) {
	switch kind {
	case workload.Integer:
		return IntegerOps, nil
	case workload.Float:
		return FloatOps, nil
	}
	return nil, ErrCalibration.Errorf("unknown operation kind %v", kind)
}

// sink keeps the compiler from discarding the loops below. It is shared by
// concurrently simulating tasks.
var sink atomic.Int64

// IntegerOps performs reps rounds of integer mixing.
func IntegerOps(reps int) {
	r := int(sink.Load())
	for range reps {
		r = ((r+7)*23)/((r/7)+47) + r%13*7
	}
	sink.Store(int64(r))
}

// FloatOps performs reps rounds of transcendental floating-point math.
func FloatOps(reps int) {
	r := int(sink.Load())
	for range reps {
		r = int(math.Sqrt(1 + math.Cos(float64(r)*1.57)))
	}
	sink.Store(int64(r))
}
