// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sim generates random workload plans for property-based tests. A plan
// fixes the graph, the per-task per-iteration loads and operation kinds, and
// the number of messages each task sends on each of its receiver slots. Plans
// are fully tabulated so that tests can predict what every task should send
// and receive in every iteration.
package sim
