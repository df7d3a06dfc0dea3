// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otlbsim

import "github.com/petenewcomb/lbsim-go"

// InstrumentedWork combines tracing, metrics, and logging for a work function.
func InstrumentedWork(operationName string, work lbsim.WorkFunc) lbsim.WorkFunc {
	// Inside-out: logging, then metrics, then the span around both.
	return TracedWork(operationName, MetricsWork(operationName, LoggedWork(operationName, work)))
}

// InstrumentedBalancer combines tracing, metrics, and logging for a balancer.
func InstrumentedBalancer(operationName string, b lbsim.Balancer) lbsim.Balancer {
	return TracedBalancer(operationName, MetricsBalancer(operationName, LoggedBalancer(operationName, b)))
}
