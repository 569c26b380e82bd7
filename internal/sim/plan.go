// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"time"

	"pgregory.net/rapid"
)

// Plan is a pool configuration and the dispatches to run on it.
type Plan struct {
	Workers  int
	Strategy int
	Cycles   []Cycle
}

// Cycle is a single dispatch.
type Cycle struct {
	// Costs[i] is how long the task runs for index i. The task count of the
	// dispatch is len(Costs).
	Costs []time.Duration
}

// TaskCount returns the number of indices dispatched by the cycle.
func (c *Cycle) TaskCount() uint32 {
	return uint32(len(c.Costs))
}

func (p *Plan) String() string {
	return fmt.Sprintf("Plan{workers=%d strategy=%d cycles=%d}", p.Workers, p.Strategy, len(p.Cycles))
}

// NewPlan draws a new plan according to config.
func NewPlan(t *rapid.T, config *Config) *Plan {
	plan := &Plan{
		Workers:  config.Workers.Draw(t, "Workers"),
		Strategy: rapid.SampledFrom(config.Strategies).Draw(t, "Strategy"),
	}
	plan.Cycles = make([]Cycle, config.Cycles.Draw(t, "Cycles"))
	for i := range plan.Cycles {
		name := fmt.Sprintf("Cycle#%d", i)
		costs := make([]time.Duration, config.TaskCount.Draw(t, name+".TaskCount"))
		for j := range costs {
			costs[j] = config.IndexCost.Draw(t, fmt.Sprintf("%s.Cost#%d", name, j))
		}
		plan.Cycles[i].Costs = costs
	}
	t.Logf("%v", plan)
	return plan
}
