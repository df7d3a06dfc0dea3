// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"fmt"

	"github.com/petenewcomb/lbsim-go/workload"
)

// Phase is where a task stands within its iteration cycle.
type Phase int

const (
	// Ready tasks have prepared the current iteration and wait for the
	// coordinator to start it. Messages from neighbors that started earlier
	// are already counted.
	Ready Phase = iota
	Computing
	Sending
	AwaitingMessages
	Reporting
	// Rebalancing tasks are packed and wait to be restored.
	Rebalancing
	// Finished tasks have reported the last iteration.
	Finished
)

var phaseNames = [...]string{
	Ready:            "ready",
	Computing:        "computing",
	Sending:          "sending",
	AwaitingMessages: "awaiting-messages",
	Reporting:        "reporting",
	Rebalancing:      "rebalancing",
	Finished:         "finished",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// TaskState is the mutable per-iteration state of one task. Only the owning
// task reads or writes it.
type TaskState struct {
	Iteration        int             `json:"iteration"`
	Phase            Phase           `json:"phase"`
	Op               workload.OpKind `json:"op"`
	Load             int             `json:"load"`
	SizeBytes        int             `json:"sizeBytes"`
	MessagesSent     int             `json:"messagesSent"`
	MessagesReceived int             `json:"messagesReceived"`
	ExpectedIncoming int             `json:"expectedIncoming"`
	Sent             bool            `json:"sent"`
}

// complete reports whether the iteration's completion condition holds.
func (s *TaskState) complete() bool {
	return s.Sent && s.MessagesReceived == s.ExpectedIncoming
}
