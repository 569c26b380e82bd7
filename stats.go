// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

// Stats is a snapshot of a pool's activity counters.
type Stats struct {
	// Workers is the fixed number of workers the pool was created with.
	Workers int
	// Running is the number of workers that have started and not yet exited.
	Running int
	// Terminated is the number of workers that have exited after Close.
	Terminated int
	// Dispatches counts completed calls to Dispatch with a non-nil task.
	Dispatches uint64
	// Indices is the sum of taskCount over those calls.
	Indices uint64
}

// Stats returns the pool's current counters. Counters are read independently
// of one another.
func (p *Pool) Stats() Stats {
	s := p.state.Snapshot()
	return Stats{
		Workers:    int(p.workerCount),
		Running:    int(s.Running),
		Terminated: int(s.Terminated),
		Dispatches: s.Dispatches,
		Indices:    s.Indices,
	}
}
