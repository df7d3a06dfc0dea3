// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"context"

	"github.com/petenewcomb/lbsim-go/internal/state"
)

// A Unit is an execution unit that tasks are placed on. It allows a fixed
// number of its tasks to compute at the same time; the rest wait their turn
// in arrival order.
type Unit struct {
	id    int
	slots *state.Slots
}

func newUnits(count, slots int) []*Unit {
	units := make([]*Unit, count)
	for i := range units {
		units[i] = &Unit{id: i, slots: state.NewSlots(slots)}
	}
	return units
}

func (u *Unit) ID() int {
	return u.id
}

// Busy returns the number of slots currently held.
func (u *Unit) Busy() int {
	return u.slots.InUse()
}

func (u *Unit) acquire(ctx context.Context) error {
	return u.slots.Acquire(ctx)
}

func (u *Unit) release() {
	u.slots.Release()
}
