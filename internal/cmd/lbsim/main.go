// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command lbsim runs the synthetic load-balancing benchmark.
//
//	lbsim run --graph 2d --tasks 64 --iterations 20 --lb-frequency 5 --units 4
//	lbsim topology --graph 3d --tasks 27 --task 13
//	lbsim calibrate
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lbsim:", err)
		os.Exit(1)
	}
}
