// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package otlbsim provides OpenTelemetry and zap instrumentation for the
// pluggable parts of an lbsim run: the work function each task calls to
// simulate computation and the balancer the coordinator consults during a
// rebalance pause. The coordinator hands each task the context of its
// iteration span, so spans created here nest beneath the iteration that
// caused them.
package otlbsim

import (
	"context"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/workload"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/petenewcomb/lbsim-go/otlbsim"

// TracedWork adds spans with the given operation name to a work function.
func TracedWork(operationName string, work lbsim.WorkFunc) lbsim.WorkFunc {
	return func(ctx context.Context, load int, kind workload.OpKind) (time.Duration, error) {
		tracer := otel.Tracer(instrumentationName)
		ctx, span := tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.Int("load", load),
			attribute.Stringer("op", kind),
		))
		defer span.End()

		elapsed, err := work(ctx, load, kind)
		span.SetAttributes(attribute.Int64("elapsed_us", elapsed.Microseconds()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return elapsed, err
	}
}

// TracedBalancer adds spans with the given operation name to a balancer.
func TracedBalancer(operationName string, b lbsim.Balancer) lbsim.Balancer {
	return lbsim.BalancerFunc(func(ctx context.Context, loads []lbsim.TaskLoad, units int) ([]int, error) {
		tracer := otel.Tracer(instrumentationName)
		ctx, span := tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.Int("tasks", len(loads)),
			attribute.Int("units", units),
		))
		defer span.End()

		placement, err := b.Balance(ctx, loads, units)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return placement, err
	})
}
