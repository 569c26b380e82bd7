// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package otfj provides OpenTelemetry and zap integration for the forkjoin
// worker pool. Dispatches are wrapped so that each call is logged, counted, and
// traced, and the dispatching context is made available to every task
// invocation so that spans created by tasks are parented to the dispatch.
package otfj

import (
	"context"
	"sync"

	forkjoin "github.com/petenewcomb/forkjoin-go"
)

// TaskFunc is a [forkjoin.TaskFunc] that also receives the context of the
// dispatch that invoked it.
type TaskFunc = func(ctx context.Context, mu *sync.Mutex, index uint32)

// DispatchFunc is the shape shared by every wrapper in this package. It has
// the same semantics as [forkjoin.Pool.Dispatch]; ctx carries trace and
// logging context only and does not cancel the dispatch.
type DispatchFunc = func(ctx context.Context, taskCount uint32, task TaskFunc)

// Bind returns a DispatchFunc that dispatches on p, passing ctx through to
// each invocation of task. A nil task reaches the pool as nil, so the pool
// reports it.
func Bind(p *forkjoin.Pool) DispatchFunc {
	return func(ctx context.Context, taskCount uint32, task TaskFunc) {
		p.Dispatch(taskCount, PropagateTask(ctx, task))
	}
}

// PropagateTask binds ctx to task, producing a function the pool can invoke
// directly. Returns nil if task is nil.
func PropagateTask(ctx context.Context, task TaskFunc) forkjoin.TaskFunc {
	if task == nil {
		return nil
	}
	return func(mu *sync.Mutex, index uint32) {
		task(ctx, mu, index)
	}
}
