// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otlbsim

import (
	"context"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/workload"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsWork records count, load, duration, and error metrics for a work
// function. Instruments are created once, against the global meter provider
// in effect when MetricsWork is called.
func MetricsWork(metricName string, work lbsim.WorkFunc) lbsim.WorkFunc {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	workCounter, _ := meter.Int64Counter(metricName + ".count")
	loadCounter, _ := meter.Int64Counter(metricName + ".load")
	workDuration, _ := meter.Float64Histogram(metricName + ".duration")
	errorCounter, _ := meter.Int64Counter(metricName + ".errors")

	return func(ctx context.Context, load int, kind workload.OpKind) (time.Duration, error) {
		attrs := metric.WithAttributes(attribute.Stringer("op", kind))
		workCounter.Add(ctx, 1, attrs)
		loadCounter.Add(ctx, int64(load), attrs)

		elapsed, err := work(ctx, load, kind)

		workDuration.Record(ctx, elapsed.Seconds(), attrs)
		if err != nil {
			errorCounter.Add(ctx, 1, attrs)
		}
		return elapsed, err
	}
}

// MetricsBalancer records count, duration, and error metrics for a balancer.
func MetricsBalancer(metricName string, b lbsim.Balancer) lbsim.Balancer {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	balanceCounter, _ := meter.Int64Counter(metricName + ".count")
	balanceDuration, _ := meter.Float64Histogram(metricName + ".duration")
	errorCounter, _ := meter.Int64Counter(metricName + ".errors")

	return lbsim.BalancerFunc(func(ctx context.Context, loads []lbsim.TaskLoad, units int) ([]int, error) {
		startTime := time.Now()
		balanceCounter.Add(ctx, 1)

		placement, err := b.Balance(ctx, loads, units)

		balanceDuration.Record(ctx, time.Since(startTime).Seconds())
		if err != nil {
			errorCounter.Add(ctx, 1)
		}
		return placement, err
	})
}
