// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin_test

import (
	"math"
	"testing"

	forkjoin "github.com/petenewcomb/forkjoin-go"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChunkScenarios(t *testing.T) {
	chk := require.New(t)

	type span struct{ start, end uint32 }
	chunks := func(n, workers uint32) []span {
		var spans []span
		for i := range workers {
			start, end := forkjoin.Chunk(i, n, workers)
			spans = append(spans, span{start, end})
		}
		return spans
	}

	chk.Equal([]span{{0, 3}, {3, 6}, {6, 9}, {9, 10}}, chunks(10, 4))
	chk.Equal([]span{{0, 1}, {1, 2}, {0, 0}, {0, 0}}, chunks(2, 4))
	chk.Equal([]span{{0, 0}, {0, 0}, {0, 0}}, chunks(0, 3))
	chk.Equal([]span{{0, 7}}, chunks(7, 1))
}

func TestChunkZeroWorkersPanics(t *testing.T) {
	chk := require.New(t)
	chk.PanicsWithValue("worker count must be at least one", func() {
		forkjoin.Chunk(0, 10, 0)
	})
}

func TestChunkNearMaxUint32(t *testing.T) {
	chk := require.New(t)
	const n = math.MaxUint32
	start, end := forkjoin.Chunk(2, n, 3)
	chk.Equal(uint32(2*(n/3)), start)
	chk.Equal(uint32(n), end)

	start, end = forkjoin.Chunk(1, n, 2)
	chk.Equal(uint32(n/2+1), start)
	chk.Equal(uint32(n), end)
}

// Checks that the per-worker chunks tile [0, N) exactly: in worker order, each
// non-empty chunk starts where the previous one ended, the first starts at
// zero, the last ends at N, and empty chunks only follow non-empty ones.
func TestChunkCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.OneOf(
			rapid.Uint32Range(0, 1000),
			rapid.Uint32(),
		).Draw(t, "totalTasks")
		workers := rapid.Uint32Range(1, 512).Draw(t, "workerCount")

		chunk := (uint64(n) + uint64(workers) - 1) / uint64(workers)
		var next uint32
		sawEmpty := false
		for i := range workers {
			start, end := forkjoin.Chunk(i, n, workers)
			require.LessOrEqual(t, start, end)
			if start == end {
				require.Zero(t, start, "empty chunk %d must be [0, 0)", i)
				sawEmpty = true
				continue
			}
			require.False(t, sawEmpty, "non-empty chunk %d follows an empty one", i)
			require.Equal(t, next, start, "gap or overlap before chunk %d", i)
			require.LessOrEqual(t, uint64(end-start), chunk)
			next = end
		}
		require.Equal(t, n, next, "chunks do not cover [0, %d)", n)
	})
}
