// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otlbsim

import (
	"context"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/workload"
	"go.uber.org/zap"
)

// LoggedWork adds structured logging to a work function. It logs to the
// global zap logger so that it can be applied without plumbing a logger
// through.
func LoggedWork(operationName string, work lbsim.WorkFunc) lbsim.WorkFunc {
	return func(ctx context.Context, load int, kind workload.OpKind) (time.Duration, error) {
		logger := zap.L()

		startTime := time.Now()
		elapsed, err := work(ctx, load, kind)
		wall := time.Since(startTime)

		if err != nil {
			logger.Error("Work failed",
				zap.String("operation", operationName),
				zap.Int("load", load),
				zap.Stringer("op", kind),
				zap.Duration("wall", wall),
				zap.Error(err))
		} else {
			logger.Debug("Work completed",
				zap.String("operation", operationName),
				zap.Int("load", load),
				zap.Stringer("op", kind),
				zap.Duration("elapsed", elapsed),
				zap.Duration("wall", wall))
		}
		return elapsed, err
	}
}

// LoggedBalancer adds structured logging to a balancer.
func LoggedBalancer(operationName string, b lbsim.Balancer) lbsim.Balancer {
	return lbsim.BalancerFunc(func(ctx context.Context, loads []lbsim.TaskLoad, units int) ([]int, error) {
		logger := zap.L()

		startTime := time.Now()
		placement, err := b.Balance(ctx, loads, units)
		duration := time.Since(startTime)

		if err != nil {
			logger.Error("Balance failed",
				zap.String("operation", operationName),
				zap.Int("tasks", len(loads)),
				zap.Int("units", units),
				zap.Duration("duration", duration),
				zap.Error(err))
		} else {
			moved := 0
			for _, l := range loads {
				if l.Task < len(placement) && placement[l.Task] != l.Unit {
					moved++
				}
			}
			logger.Debug("Balance completed",
				zap.String("operation", operationName),
				zap.Int("tasks", len(loads)),
				zap.Int("units", units),
				zap.Int("moved", moved),
				zap.Duration("duration", duration))
		}
		return placement, err
	})
}
