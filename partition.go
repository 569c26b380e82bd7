// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

// Chunk returns the half-open range [start, end) of indices that the worker
// with the given index processes when totalTasks indices are split across
// workerCount workers. Every worker receives ceil(totalTasks/workerCount)
// consecutive indices except for the trailing ones, which may receive fewer or
// none. An empty range is always reported as [0, 0).
//
// Across all worker indices in [0, workerCount) the ranges are disjoint and
// their union is exactly [0, totalTasks). Panics if workerCount is zero.
func Chunk(workerIndex, totalTasks, workerCount uint32) (start, end uint32) {
	if workerCount == 0 {
		panic("worker count must be at least one")
	}
	// 64-bit arithmetic keeps the rounding and the multiplication in chunkBounds from
	// overflowing when totalTasks is close to 2^32.
	return chunkBounds(workerIndex, totalTasks, chunkSize(totalTasks, workerCount))
}

func chunkBounds(workerIndex, totalTasks uint32, n uint64) (uint32, uint32) {
	t0 := uint64(workerIndex) * n
	if t0 >= uint64(totalTasks) {
		return 0, 0
	}
	t1 := min(t0+n, uint64(totalTasks))
	return uint32(t0), uint32(t1)
}

func chunkSize(totalTasks, workerCount uint32) uint64 {
	return (uint64(totalTasks) + uint64(workerCount) - 1) / uint64(workerCount)
}
