// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"github.com/petenewcomb/lbsim-go/internal/cerr"
	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
)

// ErrProtocolViolation indicates that an actor received a message it could
// not have received had every participant followed the iteration protocol.
// It always indicates a bug.
const ErrProtocolViolation = cerr.Error("protocol violation")

// ErrInvalidPlacement is returned when a [Balancer] produces a placement that
// does not assign every task to an existing execution unit.
const ErrInvalidPlacement = cerr.Error("invalid placement")

const ErrConfiguration = workload.ErrConfiguration
const ErrTopology = topology.ErrTopology

func violationf(format string, args ...any) error {
	return ErrProtocolViolation.Errorf(format, args...)
}
