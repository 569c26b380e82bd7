// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package barrier implements the two-phase rendezvous between a fixed set of
// workers and a single controller.
//
// Each dispatch cycle has two phases. Workers arrive at the start line and
// wait for the controller to release it, then arrive at the finish line and
// wait again. The last worker to arrive at either line wakes the controller.
// The controller resets the arrival count before every release, while all
// workers are known to be parked, so a fast worker can never observe a count
// left over from the previous phase.
//
// Releases are recorded as a monotonically increasing epoch rather than as
// per-phase flags that must be cleared. Odd epochs release the start line and
// even epochs release the finish line. A worker that has observed e releases
// is waiting for release e+1.
package barrier

import (
	"sync/atomic"
)

// Barrier is the shared synchronization state of one pool.
type Barrier struct {
	parties uint32

	// Workers that have arrived at the current line.
	arrived atomic.Uint32

	// Set by the last worker to arrive, cleared by the controller.
	ready atomic.Bool

	// Number of releases so far.
	released atomic.Uint64

	// Monotonic; never cleared once set.
	closed atomic.Bool

	start      Signal
	finish     Signal
	controller Signal
}

// New creates a barrier for the given number of workers. Panics if parties is
// zero or strategy is nil.
func New(parties uint32, strategy Strategy) *Barrier {
	if parties == 0 {
		panic("barrier requires at least one party")
	}
	if strategy == nil {
		panic("barrier strategy must be non-nil")
	}
	return &Barrier{
		parties:    parties,
		start:      strategy(),
		finish:     strategy(),
		controller: strategy(),
	}
}

// Parties returns the number of workers that must arrive at each line.
func (b *Barrier) Parties() uint32 {
	return b.parties
}

// Arrive registers a worker at the current line. The last worker to arrive
// wakes the controller.
func (b *Barrier) Arrive() {
	if b.arrived.Add(1) == b.parties {
		b.ready.Store(true)
		b.controller.Wake()
	}
}

// AwaitStart blocks a worker that has observed the given number of releases
// until the start line is released or the barrier is closed. Returns true only
// if the start line was actually released, in which case the caller now has
// observed epoch+1 releases.
func (b *Barrier) AwaitStart(epoch uint64) bool {
	return b.await(b.start, epoch)
}

// AwaitFinish is the finish-line counterpart of [Barrier.AwaitStart].
func (b *Barrier) AwaitFinish(epoch uint64) bool {
	return b.await(b.finish, epoch)
}

func (b *Barrier) await(s Signal, epoch uint64) bool {
	s.Wait(func() bool {
		return b.released.Load() > epoch || b.closed.Load()
	})
	// A real release takes precedence over shutdown so that a worker released
	// into a dispatch always completes its slice.
	return b.released.Load() > epoch
}

// AwaitArrivals blocks the controller until every worker has arrived at the
// current line, then resets the arrival state for the next line. Returns false
// without resetting anything if the barrier was closed.
func (b *Barrier) AwaitArrivals() bool {
	b.controller.Wait(func() bool {
		return b.ready.Load() || b.closed.Load()
	})
	if b.closed.Load() {
		return false
	}
	b.arrived.Store(0)
	b.ready.Store(false)
	return true
}

// ReleaseStart lets workers parked at the start line proceed. Everything the
// controller wrote before the call happens before anything a released worker
// does afterward.
func (b *Barrier) ReleaseStart() {
	b.release(b.start, 1)
}

// ReleaseFinish lets workers parked at the finish line proceed.
func (b *Barrier) ReleaseFinish() {
	b.release(b.finish, 0)
}

func (b *Barrier) release(s Signal, parity uint64) {
	if (b.released.Add(1) & 1) != parity {
		panic("barrier released out of phase")
	}
	s.Wake()
}

// Close forces every current and future wait to return. Returns false if the
// barrier was already closed.
func (b *Barrier) Close() bool {
	if !b.closed.CompareAndSwap(false, true) {
		return false
	}
	b.start.Wake()
	b.finish.Wake()
	b.controller.Wake()
	return true
}

// Closed reports whether [Barrier.Close] has been called.
func (b *Barrier) Closed() bool {
	return b.closed.Load()
}

// Epoch returns the number of releases so far.
func (b *Barrier) Epoch() uint64 {
	return b.released.Load()
}
