// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"time"

	"pgregory.net/rapid"
)

// Config determines the size and shape of generated plans.
type Config struct {
	Workers    Biased[int]
	Cycles     Biased[int]
	TaskCount  Biased[int]
	IndexCost  Biased[time.Duration]
	Strategies []int
}

// DefaultConfig keeps each plan small enough to execute in a few milliseconds.
var DefaultConfig = Config{
	Workers:   Biased[int]{Min: 1, Med: 4, Max: 8},
	Cycles:    Biased[int]{Min: 1, Med: 3, Max: 6},
	TaskCount: Biased[int]{Min: 0, Med: 16, Max: 64},
	IndexCost: Biased[time.Duration]{Min: 0, Med: 20 * time.Microsecond, Max: 200 * time.Microsecond},
	// Indices into the caller's list of wait strategies
	Strategies: []int{0, 1},
}

// NewConfig returns a copy of DefaultConfig that the caller may adjust.
func NewConfig() *Config {
	c := DefaultConfig
	return &c
}

type biasable interface {
	~int | ~int64
}

// Biased describes a range of values to draw from, centered on a median.
type Biased[T biasable] struct {
	Min T
	Med T
	Max T
}

// Draw generates a value in [Min, Max]. Values are generated as offsets from
// Med to take advantage of rapid's bias toward generating numbers near zero as
// well as at the provided bounds.
func (c Biased[T]) Draw(t *rapid.T, name string) T {
	if c.Med < c.Min || c.Max < c.Med {
		panic(fmt.Sprint("invalid biased range:", c))
	}
	offset := rapid.Int64Range(int64(c.Min-c.Med), int64(c.Max-c.Med)).Draw(t, name+"(offset)")
	return c.Med + T(offset)
}
