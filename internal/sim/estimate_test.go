// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim_test

import (
	"testing"
	"time"

	"github.com/petenewcomb/forkjoin-go/internal/sim"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEstimateScenario(t *testing.T) {
	chk := require.New(t)
	const us = time.Microsecond
	plan := &sim.Plan{
		Workers: 4,
		Cycles: []sim.Cycle{
			{Costs: []time.Duration{5 * us, 1 * us, 1 * us, 2 * us, 2 * us, 2 * us, 1 * us, 1 * us, 1 * us, 9 * us}},
			{Costs: []time.Duration{3 * us, 4 * us}},
			{},
		},
	}

	expectations := sim.Estimate(plan)
	chk.Len(expectations, 3)

	// Chunks of 3: [0,3) [3,6) [6,9) [9,10)
	chk.Equal([][]uint32{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, {9}}, expectations[0].Visits)
	chk.Equal(9*us, expectations[0].Makespan)

	// Chunks of 1: [0,1) [1,2) and two idle workers
	chk.Equal([][]uint32{{0}, {1}, nil, nil}, expectations[1].Visits)
	chk.Equal(4*us, expectations[1].Makespan)

	chk.Equal([][]uint32{nil, nil, nil, nil}, expectations[2].Visits)
	chk.Zero(expectations[2].Makespan)
}

func TestEstimateMakespanIsSlowestChunk(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		plan := sim.NewPlan(t, sim.NewConfig())
		expectations := sim.Estimate(plan)
		require.Len(t, expectations, len(plan.Cycles))
		for i, e := range expectations {
			costs := plan.Cycles[i].Costs
			var slowest time.Duration
			for _, visits := range e.Visits {
				var sum time.Duration
				for k, j := range visits {
					if k > 0 {
						require.Equal(t, visits[k-1]+1, j, "chunk is not contiguous")
					}
					sum += costs[j]
				}
				slowest = max(slowest, sum)
			}
			require.Equal(t, slowest, e.Makespan)
		}
	})
}

func TestBiasedDrawStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(t, "lo")
		med := lo + rapid.IntRange(0, 100).Draw(t, "medOffset")
		hi := med + rapid.IntRange(0, 100).Draw(t, "hiOffset")
		v := sim.Biased[int]{Min: lo, Med: med, Max: hi}.Draw(t, "v")
		require.GreaterOrEqual(t, v, lo)
		require.LessOrEqual(t, v, hi)
	})
}

func TestBiasedDrawPanicsOnInvalidRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		require.Panics(t, func() {
			sim.Biased[int]{Min: 5, Med: 1, Max: 10}.Draw(t, "v")
		})
	})
}
