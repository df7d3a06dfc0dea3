// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"fmt"
	"time"

	"github.com/petenewcomb/lbsim-go/workload"
	"go.opentelemetry.io/otel/trace"
)

// taskMessage is anything delivered to a task actor.
type taskMessage interface {
	isTaskMessage()
}

// coordinatorMessage is anything delivered to the coordinator.
type coordinatorMessage interface {
	isCoordinatorMessage()
}

// startIteration carries the coordinator's iteration span so that work done
// by the task is traced beneath it.
type startIteration struct {
	Iteration int
	Trace     trace.SpanContext
}

// payload is one application message between neighboring tasks. Slot is the
// receiver's index in the sender's receiver list.
type payload struct {
	From      int
	Iteration int
	Slot      int
	Data      []byte
}

// beginRebalance asks a task to pack itself for a rebalance pass.
type beginRebalance struct{}

// relocate hands a task its packed state back along with the execution unit
// it now lives on.
type relocate struct {
	Unit     int
	Snapshot []byte
}

func (startIteration) isTaskMessage() {}
func (payload) isTaskMessage()        {}
func (beginRebalance) isTaskMessage() {}
func (relocate) isTaskMessage()       {}

// TaskReport is what a task sends to the coordinator once per iteration.
type TaskReport struct {
	Task             int             `yaml:"task"`
	Iteration        int             `yaml:"iteration"`
	Unit             int             `yaml:"unit"`
	WorkTime         time.Duration   `yaml:"work_time"`
	Op               workload.OpKind `yaml:"op"`
	Load             int             `yaml:"load"`
	SizeBytes        int             `yaml:"size_bytes"`
	MessagesSent     int             `yaml:"messages_sent"`
	MessagesReceived int             `yaml:"messages_received"`
}

func (r TaskReport) String() string {
	return fmt.Sprintf("task %d iteration %d: unit %d, %v %s op(s) x%d, sent %d, received %d",
		r.Task, r.Iteration, r.Unit, r.WorkTime, r.Op, r.Load, r.MessagesSent, r.MessagesReceived)
}

// packed announces that a task has serialized itself for a rebalance pass.
type packed struct {
	Task     int
	Snapshot []byte
}

// resumed acknowledges that a task has been restored after a rebalance pass.
type resumed struct {
	Task int
}

func (TaskReport) isCoordinatorMessage() {}
func (packed) isCoordinatorMessage()     {}
func (resumed) isCoordinatorMessage()    {}
