// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package topology computes the communication graph connecting the tasks of a
// benchmark run. Each task gets the ordered list of tasks it sends to, the
// ordered list of tasks it receives from, and for every sender the slot this
// task occupies in that sender's own receiver list. Message counts are
// addressed by slot rather than by task id, so the slots are what a receiver
// needs to work out how many messages it should expect.
//
// All builders are pure and deterministic: the same kind, task count, and
// task id always produce the same Topology.
package topology

import (
	"fmt"
	"strings"

	"github.com/petenewcomb/lbsim-go/internal/cerr"
)

// ErrTopology is returned (wrapped) when a task graph cannot be built for the
// requested kind and task count.
const ErrTopology = cerr.Error("topology error")

// Kind identifies the rule used to connect tasks.
type Kind int

const (
	Ring Kind = iota
	Mesh2D
	Mesh3D
)

var kindNames = [...]string{
	Ring:   "ring",
	Mesh2D: "mesh2d",
	Mesh3D: "mesh3d",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the names returned by [Kind.String], case-insensitively,
// plus the "2d"/"3d" shorthands.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ring":
		return Ring, nil
	case "mesh2d", "2d", "mesh-2d":
		return Mesh2D, nil
	case "mesh3d", "3d", "mesh-3d":
		return Mesh3D, nil
	}
	return 0, ErrTopology.Errorf("unknown graph kind %q", s)
}

// MarshalText allows Kind to be used directly in YAML and mapstructure
// decoded configuration.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, ErrTopology.Errorf("unknown graph kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Topology is one task's view of the communication graph. It is built once
// and never modified, including when the task is relocated.
type Topology struct {
	// Tasks that send to this task.
	Senders []int `json:"senders"`
	// Tasks this task sends to.
	Receivers []int `json:"receivers"`
	// SenderSlots[i] is the index of this task within the receiver list of
	// Senders[i].
	SenderSlots []int `json:"senderSlots"`
}

// Build returns the topology of task id in a graph of the given kind and task
// count.
func Build(kind Kind, taskCount, id int) (Topology, error) {
	g, err := newGrid(kind, taskCount)
	if err != nil {
		return Topology{}, err
	}
	if id < 0 || id >= taskCount {
		return Topology{}, ErrTopology.Errorf("task %d out of range [0,%d)", id, taskCount)
	}
	return g.build(id), nil
}

// BuildAll returns the topologies of every task in the graph, indexed by task
// id.
func BuildAll(kind Kind, taskCount int) ([]Topology, error) {
	g, err := newGrid(kind, taskCount)
	if err != nil {
		return nil, err
	}
	all := make([]Topology, taskCount)
	for id := range all {
		all[id] = g.build(id)
	}
	return all, nil
}

// Validate reports whether a graph of the given kind can be built over
// taskCount tasks.
func Validate(kind Kind, taskCount int) error {
	_, err := newGrid(kind, taskCount)
	return err
}

// grid holds the dimensions derived from the task count. A ring is modeled as
// a one-dimensional grid whose only neighbor wraps around.
type grid struct {
	kind  Kind
	n     int
	lines int // 2D rows
	cols  int // 2D columns
	dim   int // 3D edge length
}

func newGrid(kind Kind, n int) (*grid, error) {
	g := &grid{kind: kind, n: n}
	switch kind {
	case Ring:
		if n < 2 {
			return nil, ErrTopology.Errorf("ring needs at least 2 tasks, got %d", n)
		}
	case Mesh2D:
		if n < 1 {
			return nil, ErrTopology.Errorf("2D mesh needs at least 1 task, got %d", n)
		}
		g.lines = ceilRoot(n, 2)
		g.cols = (n + g.lines - 1) / g.lines
	case Mesh3D:
		if n < 1 {
			return nil, ErrTopology.Errorf("3D mesh needs at least 1 task, got %d", n)
		}
		g.dim = ceilRoot(n, 3)
	default:
		return nil, ErrTopology.Errorf("unknown graph kind %d", int(kind))
	}
	return g, nil
}

func (g *grid) build(id int) Topology {
	if g.kind == Ring {
		return Topology{
			Senders:     []int{(id - 1 + g.n) % g.n},
			Receivers:   []int{(id + 1) % g.n},
			SenderSlots: []int{0},
		}
	}
	neighbors := g.neighbors(id)
	t := Topology{
		Senders:     neighbors,
		Receivers:   append([]int(nil), neighbors...),
		SenderSlots: make([]int, len(neighbors)),
	}
	for i, s := range neighbors {
		t.SenderSlots[i] = g.slotOf(s, id)
	}
	return t
}

// neighbors returns the valid mesh neighbors of id in candidate order:
// north, east, south, west for 2D and -x, +x, -y, +y, -z, +z for 3D.
func (g *grid) neighbors(id int) []int {
	var out []int
	switch g.kind {
	case Mesh2D:
		row, col := id/g.cols, id%g.cols
		candidates := [4][2]int{
			{row - 1, col},
			{row, col + 1},
			{row + 1, col},
			{row, col - 1},
		}
		out = make([]int, 0, len(candidates))
		for _, c := range candidates {
			r, k := c[0], c[1]
			if r < 0 || r >= g.lines || k < 0 || k >= g.cols {
				continue
			}
			if idx := r*g.cols + k; idx < g.n {
				out = append(out, idx)
			}
		}
	case Mesh3D:
		d := g.dim
		x := id % d
		y := ((id - x) % (d * d)) / d
		z := (id - y*d - x) / (d * d)
		candidates := [6][3]int{
			{x - 1, y, z},
			{x + 1, y, z},
			{x, y - 1, z},
			{x, y + 1, z},
			{x, y, z - 1},
			{x, y, z + 1},
		}
		out = make([]int, 0, len(candidates))
		for _, c := range candidates {
			if !inRange(c[0], d) || !inRange(c[1], d) || !inRange(c[2], d) {
				continue
			}
			if idx := c[2]*d*d + c[1]*d + c[0]; idx < g.n {
				out = append(out, idx)
			}
		}
	}
	return out
}

// slotOf returns the position of target in sender's neighbor enumeration.
// Mesh adjacency is symmetric so target is always found.
func (g *grid) slotOf(sender, target int) int {
	for slot, r := range g.neighbors(sender) {
		if r == target {
			return slot
		}
	}
	panic(fmt.Sprintf("task %d is not a neighbor of task %d", target, sender))
}

func inRange(v, d int) bool {
	return v >= 0 && v < d
}

// ceilRoot returns the smallest d >= 1 such that d^k >= n. Integer arithmetic
// keeps perfect powers exact (27 tasks form a 3x3x3 cube).
func ceilRoot(n, k int) int {
	d := 1
	for pow(d, k) < n {
		d++
	}
	return d
}

func pow(d, k int) int {
	p := 1
	for range k {
		p *= d
	}
	return p
}
