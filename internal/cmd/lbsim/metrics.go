// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"time"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// logReporter writes tally metrics to the debug log.
type logReporter struct {
	logger *zap.Logger
}

var _ tally.StatsReporter = (*logReporter)(nil)

func (r *logReporter) Capabilities() tally.Capabilities { return r }
func (r *logReporter) Reporting() bool                  { return true }
func (r *logReporter) Tagging() bool                    { return false }
func (r *logReporter) Flush()                           {}

func (r *logReporter) ReportCounter(name string, _ map[string]string, value int64) {
	r.logger.Debug("counter", zap.String("name", name), zap.Int64("value", value))
}

func (r *logReporter) ReportGauge(name string, _ map[string]string, value float64) {
	r.logger.Debug("gauge", zap.String("name", name), zap.Float64("value", value))
}

func (r *logReporter) ReportTimer(name string, _ map[string]string, interval time.Duration) {
	r.logger.Debug("timer", zap.String("name", name), zap.Duration("value", interval))
}

func (r *logReporter) ReportHistogramValueSamples(name string, _ map[string]string, _ tally.Buckets,
	lower, upper float64, samples int64,
) {
	r.logger.Debug("histogram",
		zap.String("name", name),
		zap.Float64("lower", lower),
		zap.Float64("upper", upper),
		zap.Int64("samples", samples))
}

func (r *logReporter) ReportHistogramDurationSamples(name string, _ map[string]string, _ tally.Buckets,
	lower, upper time.Duration, samples int64,
) {
	r.logger.Debug("histogram",
		zap.String("name", name),
		zap.Duration("lower", lower),
		zap.Duration("upper", upper),
		zap.Int64("samples", samples))
}
