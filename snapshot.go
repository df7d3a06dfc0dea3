// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"encoding/json"
	"fmt"

	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
)

// Snapshot is everything needed to recreate a task elsewhere. Tasks produce
// one at the start of a rebalance pass and are rebuilt from it at the end.
type Snapshot struct {
	Task     int               `json:"task"`
	Unit     int               `json:"unit"`
	Topology topology.Topology `json:"topology"`
	State    TaskState         `json:"state"`
	Memo     workload.Memo     `json:"memo"`
	Data     []byte            `json:"data"`
}

func (s *Snapshot) Pack() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("packing task %d: %w", s.Task, err)
	}
	return b, nil
}

func UnpackSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unpacking task snapshot: %w", err)
	}
	if len(s.Topology.SenderSlots) != len(s.Topology.Senders) {
		return nil, fmt.Errorf("unpacking task %d: %d sender slots for %d senders",
			s.Task, len(s.Topology.SenderSlots), len(s.Topology.Senders))
	}
	if len(s.Data) != s.State.SizeBytes {
		return nil, fmt.Errorf("unpacking task %d: %d data bytes, want %d", s.Task, len(s.Data), s.State.SizeBytes)
	}
	return &s, nil
}
