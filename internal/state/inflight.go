// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"
)

// InFlightCounter is a thread-safe count of held resources.
type InFlightCounter struct {
	v atomic.Int64
}

func (c *InFlightCounter) Increment() {
	c.v.Add(1)
}

func (c *InFlightCounter) IncrementIfUnder(limit int) bool {
	// Tentatively increment the counter and check against limit. If over limit,
	// remove the tentative increment and try again if we notice that another
	// goroutine has made room between the increment and decrement.
	for c.v.Add(1) > int64(limit) {
		if c.v.Add(-1) >= int64(limit) {
			return false
		}
	}
	return true
}

func (c *InFlightCounter) Decrement() bool {
	newValue := c.v.Add(-1)
	if newValue < 0 {
		panic("nothing in flight")
	}
	return newValue == 0
}

func (c *InFlightCounter) Value() int {
	return int(c.v.Load())
}
