// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"github.com/uber-go/tally/v4"
)

// metrics holds the instruments updated during a run. Counters are shared by
// all task actors.
type metrics struct {
	Iterations    tally.Counter
	IterationTime tally.Timer
	IterationWall tally.Timer

	Rebalances tally.Counter
	PauseTime  tally.Timer
	Migrations tally.Counter

	TaskWorkTime     tally.Timer
	MessagesSent     tally.Counter
	MessagesReceived tally.Counter
	BytesSent        tally.Counter
	SnapshotBytes    tally.Counter

	Violations tally.Counter
}

func newMetrics(scope tally.Scope) *metrics {
	s := scope.SubScope("lbsim")
	iterScope := s.SubScope("iteration")
	lbScope := s.SubScope("rebalance")
	taskScope := s.SubScope("task")
	return &metrics{
		Iterations:    iterScope.Counter("completed"),
		IterationTime: iterScope.Timer("duration"),
		IterationWall: iterScope.Timer("elapsed"),

		Rebalances: lbScope.Counter("completed"),
		PauseTime:  lbScope.Timer("pause"),
		Migrations: lbScope.Counter("migrations"),

		TaskWorkTime:     taskScope.Timer("work"),
		MessagesSent:     taskScope.Tagged(map[string]string{"direction": "sent"}).Counter("messages"),
		MessagesReceived: taskScope.Tagged(map[string]string{"direction": "received"}).Counter("messages"),
		BytesSent:        taskScope.Counter("bytes_sent"),
		SnapshotBytes:    taskScope.Counter("snapshot_bytes"),

		Violations: s.Counter("protocol_violations"),
	}
}
