// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"

	"pgregory.net/rapid"
)

// BiasedIntConfig bounds a drawn integer to [Min, Max] while making values
// near Med as likely as values near the bounds.
type BiasedIntConfig struct {
	Min int
	Med int
	Max int
}

// Generator returns a generator for the configured range. It panics if the
// bounds are out of order.
func (c BiasedIntConfig) Generator() *rapid.Generator[int] {
	if c.Med < c.Min || c.Max < c.Med {
		panic(fmt.Sprint("invalid BiasedIntConfig:", c))
	}
	// rapid favors zero and the bounds, so draw the offset from Med.
	offset := rapid.IntRange(c.Min-c.Med, c.Max-c.Med)
	return rapid.Map(offset, func(d int) int { return c.Med + d })
}

func (c BiasedIntConfig) Draw(t *rapid.T, name string) int {
	return c.Generator().Draw(t, name)
}

// BiasedBool returns a generator that yields true with probability p. A p of
// 1 always yields true and a p of 0 never does.
func BiasedBool(p float64) *rapid.Generator[bool] {
	below := rapid.Float64Range(0, 1).Filter(func(v float64) bool { return v != 1 })
	return rapid.Map(below, func(v float64) bool { return v < p || p >= 1 })
}
