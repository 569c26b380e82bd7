// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"github.com/stretchr/testify/require"
)

// Check compares observations from [Run] against expectations from
// [Estimate] for the same plan.
//
// Only properties that hold regardless of scheduling noise are checked: every
// index ran exactly once, each worker's indices completed in the predicted
// order, and no dispatch returned sooner than its slowest chunk could have
// finished.
func Check(t require.TestingT, plan *Plan, expectations []*Expectation, observations []*Observation) {
	chk := require.New(t)
	chk.Len(expectations, len(plan.Cycles))
	chk.Len(observations, len(plan.Cycles))

	for i := range plan.Cycles {
		e, o := expectations[i], observations[i]
		n := int(plan.Cycles[i].TaskCount())
		chk.Len(o.Executions, n)
		for j, count := range o.Executions {
			chk.Equal(uint32(1), count, "cycle %d index %d", i, j)
		}

		visited := 0
		for w, visits := range e.Visits {
			visited += len(visits)
			for k := 1; k < len(visits); k++ {
				chk.Less(o.Sequence[visits[k-1]], o.Sequence[visits[k]],
					"cycle %d worker %d completed index %d before %d", i, w, visits[k], visits[k-1])
			}
		}
		chk.Equal(n, visited, "cycle %d estimate lost indices", i)

		chk.GreaterOrEqual(o.Duration, e.Makespan,
			"cycle %d returned before its slowest chunk could have finished", i)
	}
}
