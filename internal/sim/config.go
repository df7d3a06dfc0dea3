// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import "github.com/petenewcomb/lbsim-go/topology"

var DefaultConfig = Config{
	Kinds:       []topology.Kind{topology.Ring, topology.Mesh2D, topology.Mesh3D},
	Tasks:       BiasedIntConfig{Min: 1, Med: 8, Max: 40},
	Iterations:  BiasedIntConfig{Min: 1, Med: 4, Max: 8},
	Frequency:   BiasedIntConfig{Min: 1, Med: 2, Max: 5},
	Load:        BiasedIntConfig{Min: 0, Med: 2, Max: 10},
	Size:        BiasedIntConfig{Min: 0, Med: 16, Max: 256},
	Messages:    BiasedIntConfig{Min: 0, Med: 1, Max: 3},
	MessageSize: BiasedIntConfig{Min: 0, Med: 8, Max: 64},
	FloatOps:    0.25,
}

type Config struct {
	Kinds       []topology.Kind
	Tasks       BiasedIntConfig
	Iterations  BiasedIntConfig
	Frequency   BiasedIntConfig
	Load        BiasedIntConfig
	Size        BiasedIntConfig
	Messages    BiasedIntConfig
	MessageSize BiasedIntConfig

	// FloatOps is the probability that a task computes with floating point
	// operations in a given iteration.
	FloatOps float64
}
