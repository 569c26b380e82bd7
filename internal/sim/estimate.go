// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"cmp"
	"time"

	"github.com/addrummond/heap"
	"github.com/gammazero/deque"
	forkjoin "github.com/petenewcomb/forkjoin-go"
)

// Expectation is the estimator's prediction for one cycle.
type Expectation struct {
	// The earliest the dispatch can complete: the finish time of the worker
	// with the most expensive chunk, ignoring all scheduling overhead.
	Makespan time.Duration
	// Visits[w] lists the indices worker w executes, in execution order.
	Visits [][]uint32
}

// Estimate simulates every cycle of the plan on idealized workers that start
// simultaneously and never wait on each other.
func Estimate(plan *Plan) []*Expectation {
	expectations := make([]*Expectation, len(plan.Cycles))
	for i := range plan.Cycles {
		expectations[i] = estimateCycle(plan.Workers, &plan.Cycles[i])
	}
	return expectations
}

func estimateCycle(workers int, cycle *Cycle) *Expectation {
	n := cycle.TaskCount()
	queues := make([]deque.Deque[uint32], workers)
	for w := range queues {
		start, end := forkjoin.Chunk(uint32(w), n, uint32(workers))
		for j := start; j < end; j++ {
			queues[w].PushBack(j)
		}
	}

	e := &Expectation{
		Visits: make([][]uint32, workers),
	}
	var eventHeap heap.Heap[workerEvent, heap.Min]
	startNext := func(w int, now time.Duration) {
		if queues[w].Len() == 0 {
			return
		}
		j := queues[w].PopFront()
		heap.PushOrderable(&eventHeap, workerEvent{
			Time:   now + cycle.Costs[j],
			Worker: w,
			Index:  j,
		})
	}
	for w := range workers {
		startNext(w, 0)
	}

	for {
		event, ok := heap.PopOrderable(&eventHeap)
		if !ok {
			break
		}
		e.Makespan = event.Time
		e.Visits[event.Worker] = append(e.Visits[event.Worker], event.Index)
		startNext(event.Worker, event.Time)
	}
	return e
}

// workerEvent marks the completion of one index by one worker.
type workerEvent struct {
	Time   time.Duration
	Worker int
	Index  uint32
}

func (a *workerEvent) Cmp(b *workerEvent) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	return cmp.Compare(a.Worker, b.Worker)
}
