// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

import (
	"runtime"

	"go.uber.org/zap"
)

// work is the body of each worker goroutine. Each iteration is one dispatch
// cycle: wait at the start line, execute this worker's slice, wait at the
// finish line. Shutdown is only acted upon after the finish line, so a
// dispatch that has been released always reaches its finish line in full.
func (p *Pool) work(worker int) {
	defer p.workers.Done()

	if p.config.lockThreads {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	p.state.WorkerStarted()
	if p.config.onWorkerStart != nil {
		p.config.onWorkerStart(worker)
	}
	p.logger.Debug("Worker started", zap.Int("worker", worker))

	b := p.barrier
	var epoch uint64
	for {
		b.Arrive()
		if b.AwaitStart(epoch) {
			epoch++
			p.execute(uint32(worker))
		}
		// Otherwise the wait was ended by shutdown, which counts as an empty
		// dispatch.

		b.Arrive()
		if b.AwaitFinish(epoch) {
			epoch++
		}
		if b.Closed() {
			break
		}
	}

	if p.config.onWorkerStop != nil {
		p.config.onWorkerStop(worker)
	}
	p.logger.Debug("Worker stopped", zap.Int("worker", worker))
	p.state.WorkerTerminated()
}

func (p *Pool) execute(worker uint32) {
	d := &p.current
	t0, t1 := chunkBounds(worker, d.taskCount, d.chunkSize)
	for j := t0; j < t1; j++ {
		d.task(&p.shared, j)
	}
}
