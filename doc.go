// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package lbsim generates synthetic distributed workloads for studying task
// placement and rebalancing. A run creates one actor per task, connects the
// tasks according to a [topology.Kind], and drives them through a fixed
// number of synchronized iterations. In each iteration every task simulates
// a computation, sends messages to its receivers, and waits until it has
// received as many messages as its senders were told to send. A coordinator
// collects one report per task per iteration, records the slowest task's
// work time as the iteration duration, and periodically pauses the whole
// population for a rebalance pass during which tasks are serialized,
// possibly moved to other execution units, and restored.
//
// The amounts of computation and communication come from a
// [workload.Workload]. Tasks placed on the same execution unit compete for
// that unit's slots, so placement changes made by a [Balancer] show up in
// the measured iteration times.
//
// [Run] executes a complete benchmark and returns a [Report]:
//
//	w, _ := workload.DefaultParams().Workload()
//	report, err := lbsim.Run(ctx, w, &lbsim.Options{Units: 4})
package lbsim
