// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

import (
	"go.uber.org/zap"
)

// Dispatch invokes task once for every index in [0, taskCount), spreading the
// indices across the pool's workers in contiguous chunks (see [Chunk]), and
// blocks until every invocation has returned. Workers are reused from one call
// to the next; no goroutines are created.
//
// If task is nil, Dispatch logs a diagnostic and returns without doing
// anything. The pool remains usable.
//
// The first call waits for all workers to finish starting up. A call with a
// taskCount of zero returns immediately.
//
// Only one dispatch may be in progress at a time. Dispatch panics if it is
// called while another call on the same pool has not yet returned, whether
// from another goroutine or from within a TaskFunc. It also panics if the pool
// has been closed. If [Pool.Close] is called while a dispatch is in progress,
// Dispatch waits for the workers to exit and returns; indices whose workers
// had not yet been released are skipped.
func (p *Pool) Dispatch(taskCount uint32, task TaskFunc) {
	if task == nil {
		p.logger.Error("Invalid function given to dispatch call",
			zap.Uint32("taskCount", taskCount),
			zap.Error(ErrNilTask))
		return
	}

	p.state.PanicIfClosed()
	p.state.BeginDispatch()

	if taskCount == 0 {
		p.state.EndDispatch(0)
		return
	}

	// Wait for every worker to be parked at the start line. Only the first
	// call normally has to wait here, for the workers to start up.
	b := p.barrier
	if !b.AwaitArrivals() {
		p.abortDispatch()
		return
	}

	p.current = descriptor{
		taskCount: taskCount,
		chunkSize: chunkSize(taskCount, p.workerCount),
		task:      task,
	}
	b.ReleaseStart()

	if !b.AwaitArrivals() {
		p.abortDispatch()
		return
	}

	// Every worker is parked at the finish line and done with the descriptor.
	// Drop the reference so the pool does not retain the caller's closure.
	p.current.task = nil
	b.ReleaseFinish()
	p.state.EndDispatch(taskCount)
}

// abortDispatch handles shutdown observed by an in-flight dispatch. Workers
// that were released are still executing their slices, so wait for all of
// them to exit before giving control back to the caller.
func (p *Pool) abortDispatch() {
	p.workers.Wait()
	p.current.task = nil
	p.state.AbortDispatch()
}
