// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package forkjoin provides a fixed-size pool of persistent workers for
// repeated data-parallel loops. A [Pool] starts its workers once, and each call
// to [Pool.Dispatch] then splits an index range into contiguous chunks, runs a
// [TaskFunc] for every index on the workers, and returns when all of them are
// done. Goroutine creation is paid exactly once regardless of how many
// dispatches follow, which makes the pool suitable for hot loops that fork and
// join thousands of times per second.
//
// Each dispatch is a cycle through a two-phase barrier. Workers park at a start
// line until the dispatching goroutine has published the work, execute their
// chunk, and park again at a finish line until every worker has arrived. How
// they park is chosen per pool with [WithWaitStrategy]: [Block] sleeps on a
// condition variable, while [Spin] busy-polls for the lowest possible latency
// at the cost of keeping processors busy.
//
// The pool is not a general task queue. It has no work stealing, priorities,
// or cancellation of a dispatch in progress, and it does not recover panics
// raised by tasks. The only way to stop the workers is [Pool.Close].
package forkjoin

// Charts are rendered from benchmark results saved with:
//
//	go test -run=NONE -bench=Dispatch -count=6 . > bench.txt
//go:generate go run -C internal/cmd/chartgen . ../../../bench.txt
