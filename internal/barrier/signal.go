// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package barrier

import (
	"runtime"
	"sync"
)

// A Signal is a rendezvous point at which goroutines wait for a condition
// published through atomics to become true.
//
// Wait must not return until ready returns true, and must re-check ready after
// every wake-up. Wake must be called after every change that could make a
// waiter's ready function return true.
type Signal interface {
	Wait(ready func() bool)
	Wake()
}

// A Strategy creates the signals used by a [Barrier].
type Strategy func() Signal

// Spin is the busy-polling strategy. Waiters never park in the scheduler, so
// release latency is minimal at the cost of a fully consumed processor per
// waiter.
func Spin() Signal {
	return spinSignal{}
}

// Block is the parking strategy. Waiters sleep on a condition variable.
func Block() Signal {
	s := &blockSignal{}
	s.cond.L = &s.mu
	return s
}

// Number of tight polls before a spinning waiter starts yielding its processor
// on every poll. Yielding is required to make progress when there are more
// spinners than GOMAXPROCS.
const spinsBeforeYield = 128

type spinSignal struct{}

func (spinSignal) Wait(ready func() bool) {
	for i := 0; !ready(); i++ {
		if i >= spinsBeforeYield {
			runtime.Gosched()
		}
	}
}

func (spinSignal) Wake() {}

type blockSignal struct {
	mu   sync.Mutex
	cond sync.Cond
}

func (s *blockSignal) Wait(ready func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !ready() {
		s.cond.Wait()
	}
}

func (s *blockSignal) Wake() {
	// The state observed by ready is published outside of mu. Passing through
	// mu before broadcasting guarantees that every waiter is either still
	// before its check of ready or already parked in cond.Wait.
	s.mu.Lock()
	s.mu.Unlock() //nolint:staticcheck
	s.cond.Broadcast()
}
