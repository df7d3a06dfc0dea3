// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package lbsim

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/addrummond/heap"
)

// TaskLoad describes one task as seen by a [Balancer]: where it is and how
// it behaved in the iteration just before the rebalance pass.
type TaskLoad struct {
	Task      int
	Unit      int
	WorkTime  time.Duration
	Load      int
	SizeBytes int
}

// A Balancer decides where tasks live after a rebalance pass. It returns the
// new unit of every task, indexed by task id.
type Balancer interface {
	Balance(ctx context.Context, loads []TaskLoad, units int) ([]int, error)
}

// BalancerFunc adapts a function to the [Balancer] interface.
type BalancerFunc func(ctx context.Context, loads []TaskLoad, units int) ([]int, error)

func (f BalancerFunc) Balance(ctx context.Context, loads []TaskLoad, units int) ([]int, error) {
	return f(ctx, loads, units)
}

// KeepBalancer leaves every task where it is. The pause still happens, so it
// measures the cost of packing and restoring alone.
type KeepBalancer struct{}

func (KeepBalancer) Balance(_ context.Context, loads []TaskLoad, _ int) ([]int, error) {
	placement := make([]int, len(loads))
	for _, l := range loads {
		placement[l.Task] = l.Unit
	}
	return placement, nil
}

// RoundRobinBalancer moves every task to the next unit.
type RoundRobinBalancer struct{}

func (RoundRobinBalancer) Balance(_ context.Context, loads []TaskLoad, units int) ([]int, error) {
	placement := make([]int, len(loads))
	for _, l := range loads {
		placement[l.Task] = (l.Unit + 1) % units
	}
	return placement, nil
}

// GreedyBalancer assigns tasks, heaviest first, to the unit with the least
// accumulated work time.
type GreedyBalancer struct{}

type unitLoad struct {
	unit  int
	total time.Duration
}

func (a *unitLoad) Cmp(b *unitLoad) int {
	if c := cmp.Compare(a.total, b.total); c != 0 {
		return c
	}
	return cmp.Compare(a.unit, b.unit)
}

func (GreedyBalancer) Balance(ctx context.Context, loads []TaskLoad, units int) ([]int, error) {
	order := slices.Clone(loads)
	slices.SortStableFunc(order, func(a, b TaskLoad) int {
		if c := cmp.Compare(b.WorkTime, a.WorkTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Task, b.Task)
	})

	var h heap.Heap[unitLoad, heap.Min]
	for u := range units {
		heap.PushOrderable(&h, unitLoad{unit: u})
	}
	placement := make([]int, len(loads))
	for _, l := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		least, _ := heap.PopOrderable(&h)
		placement[l.Task] = least.unit
		least.total += l.WorkTime
		heap.PushOrderable(&h, least)
	}
	return placement, nil
}

// ParseBalancer returns the balancer with the given name: "keep", "greedy",
// or "round-robin".
func ParseBalancer(name string) (Balancer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keep", "none":
		return KeepBalancer{}, nil
	case "greedy":
		return GreedyBalancer{}, nil
	case "round-robin", "roundrobin", "rotate":
		return RoundRobinBalancer{}, nil
	}
	return nil, fmt.Errorf("%w: unknown balancer %q", ErrConfiguration, name)
}

// checkPlacement verifies that placement puts each of tasks tasks on one of
// units units.
func checkPlacement(placement []int, tasks, units int) error {
	if len(placement) != tasks {
		return fmt.Errorf("%w: %d entries for %d tasks", ErrInvalidPlacement, len(placement), tasks)
	}
	for task, u := range placement {
		if u < 0 || u >= units {
			return fmt.Errorf("%w: task %d on unit %d, want [0,%d)", ErrInvalidPlacement, task, u, units)
		}
	}
	return nil
}
