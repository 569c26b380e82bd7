// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"
)

// lifecycleStage represents the possible stages in a pool's lifecycle
type lifecycleStage int32

const (
	// stageOpen indicates that the pool is accepting dispatches
	stageOpen lifecycleStage = iota
	// stageClosing indicates that shutdown has been requested and workers
	// are being released from their waits
	stageClosing
	// stageClosed indicates that every worker has exited
	stageClosed
)

// PoolState encapsulates the lifecycle and dispatch bookkeeping of a
// fork-join pool.
type PoolState struct {
	currentStage atomic.Int32 // Contains a lifecycleStage value
	dispatching  atomic.Bool
	running      atomic.Int64
	terminated   atomic.Int64
	dispatches   atomic.Uint64
	indices      atomic.Uint64
	done         chan struct{}
}

// Init initializes an uninitialized PoolState to the Open stage, and must be
// called exactly once before any other methods. An Init method is provided
// instead of a New function because PoolState is expected to be an embedded
// field of Pool.
func (ps *PoolState) Init() {
	ps.currentStage.Store(int32(stageOpen))
	ps.done = make(chan struct{})
}

// Close attempts to transition from Open to Closing. Returns true only for
// the caller that performed the transition.
func (ps *PoolState) Close() bool {
	return ps.currentStage.CompareAndSwap(int32(stageOpen), int32(stageClosing))
}

// Terminated transitions from Closing to Closed once every worker has exited.
func (ps *PoolState) Terminated() {
	if ps.currentStage.CompareAndSwap(int32(stageClosing), int32(stageClosed)) {
		close(ps.done)
	}
}

// Done returns the channel that will be closed when the pool transitions to
// Closed.
func (ps *PoolState) Done() <-chan struct{} {
	return ps.done
}

// IsOpen reports whether the pool still accepts dispatches.
func (ps *PoolState) IsOpen() bool {
	return lifecycleStage(ps.currentStage.Load()) == stageOpen
}

// PanicIfClosed panics if shutdown of the pool has begun
func (ps *PoolState) PanicIfClosed() {
	if !ps.IsOpen() {
		panic("pool is closed")
	}
}

// BeginDispatch marks a dispatch as in progress. Panics if one already is,
// since the barrier protocol supports exactly one controller at a time.
func (ps *PoolState) BeginDispatch() {
	if !ps.dispatching.CompareAndSwap(false, true) {
		panic("Dispatch called while another dispatch is in progress")
	}
}

// EndDispatch records a completed dispatch of the given number of indices.
func (ps *PoolState) EndDispatch(indices uint32) {
	ps.dispatches.Add(1)
	ps.indices.Add(uint64(indices))
	ps.AbortDispatch()
}

// AbortDispatch clears the in-progress mark without recording a dispatch.
func (ps *PoolState) AbortDispatch() {
	if !ps.dispatching.CompareAndSwap(true, false) {
		panic("no dispatch in progress")
	}
}

// WorkerStarted records that a worker has entered its loop.
func (ps *PoolState) WorkerStarted() {
	ps.running.Add(1)
}

// WorkerTerminated records that a worker has permanently left its loop.
func (ps *PoolState) WorkerTerminated() {
	if ps.running.Add(-1) < 0 {
		panic("there were no workers running")
	}
	ps.terminated.Add(1)
}

// Snapshot is a point-in-time copy of the counters kept by PoolState.
type Snapshot struct {
	Dispatches uint64
	Indices    uint64
	Running    int64
	Terminated int64
}

// Snapshot returns the current counter values. Individual counters are read
// independently and may not be mutually consistent while workers are active.
func (ps *PoolState) Snapshot() Snapshot {
	return Snapshot{
		Dispatches: ps.dispatches.Load(),
		Indices:    ps.indices.Load(),
		Running:    ps.running.Load(),
		Terminated: ps.terminated.Load(),
	}
}
