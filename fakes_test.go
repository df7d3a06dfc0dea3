// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"context"
	"time"

	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// recordingPost captures messages instead of delivering them so that tests
// can drive actors one message at a time.
type recordingPost struct {
	sentToTasks       []taskDelivery
	sentToCoordinator []coordinatorMessage
	shutdowns         int
}

type taskDelivery struct {
	task int
	msg  taskMessage
}

func (p *recordingPost) toTask(task int, msg taskMessage) {
	p.sentToTasks = append(p.sentToTasks, taskDelivery{task, msg})
}

func (p *recordingPost) toCoordinator(msg coordinatorMessage) {
	p.sentToCoordinator = append(p.sentToCoordinator, msg)
}

func (p *recordingPost) shutdown() {
	p.shutdowns++
}

// reports returns the task reports posted to the coordinator so far.
func (p *recordingPost) reports() []TaskReport {
	var out []TaskReport
	for _, m := range p.sentToCoordinator {
		if r, ok := m.(TaskReport); ok {
			out = append(out, r)
		}
	}
	return out
}

// loadWork pretends that each load unit takes a millisecond without
// actually waiting.
func loadWork(_ context.Context, load int, _ workload.OpKind) (time.Duration, error) {
	return time.Duration(load) * time.Millisecond, nil
}

func newTestEnv(iterations, units int) (*environment, *recordingPost) {
	post := &recordingPost{}
	return &environment{
		iterations: iterations,
		units:      newUnits(units, 1),
		work:       loadWork,
		post:       post,
		logger:     zap.NewNop(),
		metrics:    newMetrics(tally.NoopScope),
	}, post
}

// takeTaskMessages returns and forgets what has been posted to tasks.
func (p *recordingPost) takeTaskMessages() []taskDelivery {
	out := p.sentToTasks
	p.sentToTasks = nil
	return out
}
