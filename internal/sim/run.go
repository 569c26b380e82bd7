// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"sync"
	"sync/atomic"
	"time"

	forkjoin "github.com/petenewcomb/forkjoin-go"
	"go.uber.org/zap"
)

// Observation is what actually happened during one cycle.
type Observation struct {
	Duration time.Duration
	// Sequence[j] is the order in which index j completed across the whole
	// dispatch, starting from one. Zero means the index never ran.
	Sequence []uint64
	// Executions[j] counts how many times index j ran.
	Executions []uint32
}

// Run executes the plan on a new pool using strategies[plan.Strategy] and
// closes the pool before returning. Each index sleeps for its cost.
func Run(plan *Plan, strategies []forkjoin.WaitStrategy, logger *zap.Logger) []*Observation {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := forkjoin.NewPool(plan.Workers,
		forkjoin.WithWaitStrategy(strategies[plan.Strategy]),
		forkjoin.WithLogger(logger))
	defer p.Close()

	observations := make([]*Observation, len(plan.Cycles))
	for i := range plan.Cycles {
		observations[i] = runCycle(p, &plan.Cycles[i])
	}
	return observations
}

func runCycle(p *forkjoin.Pool, cycle *Cycle) *Observation {
	n := cycle.TaskCount()
	o := &Observation{
		Sequence:   make([]uint64, n),
		Executions: make([]uint32, n),
	}
	var seq atomic.Uint64
	var executions sync.Mutex
	startTime := time.Now()
	p.Dispatch(n, func(_ *sync.Mutex, j uint32) {
		time.Sleep(cycle.Costs[j])
		executions.Lock()
		o.Executions[j]++
		executions.Unlock()
		o.Sequence[j] = seq.Add(1)
	})
	o.Duration = time.Since(startTime)
	return o
}
