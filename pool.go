// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

import (
	"math"
	"runtime"
	"sync"

	"github.com/petenewcomb/forkjoin-go/internal/barrier"
	"github.com/petenewcomb/forkjoin-go/internal/state"
	"go.uber.org/zap"
)

// A Pool is a fixed set of persistent worker goroutines that repeatedly
// execute a [TaskFunc] across a range of indices. Use [Pool.Dispatch] to run
// a dispatch and [Pool.Close] to stop the workers.
//
// Pools are created using [NewPool] or [NewDefaultPool].
type Pool struct {
	workerCount uint32
	barrier     *barrier.Barrier
	state       state.PoolState
	workers     sync.WaitGroup
	logger      *zap.Logger
	config      config

	// Handed to every TaskFunc invocation; never locked by the pool itself.
	shared sync.Mutex

	// Written only by the dispatching goroutine while every worker is parked
	// at the start line, and read by workers only after the start line has
	// been released.
	current descriptor
}

type descriptor struct {
	taskCount uint32
	chunkSize uint64
	task      TaskFunc
}

// NewDefaultPool creates a [Pool] with one worker per available processor, as
// reported by [runtime.GOMAXPROCS].
func NewDefaultPool(opts ...Option) *Pool {
	return NewPool(runtime.GOMAXPROCS(0), opts...)
}

// NewPool creates a [Pool] with the given number of workers and starts them.
// The workers run until [Pool.Close] is called.
//
// Panics if workerCount is less than one.
func NewPool(workerCount int, opts ...Option) *Pool {
	if workerCount < 1 {
		panic("worker count must be at least one")
	}
	if uint64(workerCount) > math.MaxUint32 {
		panic("worker count too large")
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	p := &Pool{
		workerCount: uint32(workerCount),
		barrier:     barrier.New(uint32(workerCount), c.waitStrategy.barrierStrategy()),
		logger:      c.logger.Named("forkjoin"),
		config:      c,
	}
	p.state.Init()

	p.workers.Add(workerCount)
	for i := range workerCount {
		go p.work(i)
	}

	p.logger.Debug("Started pool",
		zap.Int("workers", workerCount),
		zap.Stringer("waitStrategy", c.waitStrategy))
	return p
}

// WorkerCount returns the number of workers, which is fixed for the lifetime of
// the pool.
func (p *Pool) WorkerCount() int {
	return int(p.workerCount)
}

// Close stops all workers and waits until every one of them has exited. Workers
// waiting at either line of a dispatch cycle are forced out of their wait; a
// worker that is executing its slice of an in-flight dispatch finishes the
// slice first.
//
// Close is thread-safe. Calling it more than once has no additional effect,
// though every call waits for the workers to exit. After Close, calls to
// [Pool.Dispatch] panic.
func (p *Pool) Close() {
	if p.state.Close() {
		p.logger.Debug("Closing pool", zap.Uint32("workers", p.workerCount))
		p.barrier.Close()
	}
	p.workers.Wait()
	p.state.Terminated()
}

// Done returns a channel that is closed once [Pool.Close] has stopped every
// worker.
func (p *Pool) Done() <-chan struct{} {
	return p.state.Done()
}
