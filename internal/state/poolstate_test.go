// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolState_Lifecycle(t *testing.T) {
	chk := require.New(t)
	var ps PoolState
	ps.Init()

	chk.True(ps.IsOpen())
	chk.NotPanics(ps.PanicIfClosed)

	select {
	case <-ps.Done():
		chk.Fail("Did not expect done channel to be closed yet")
	default:
	}

	// Only the first Close performs the transition
	chk.True(ps.Close())
	chk.False(ps.Close())
	chk.False(ps.IsOpen())
	chk.PanicsWithValue("pool is closed", ps.PanicIfClosed)

	ps.Terminated()
	select {
	case <-ps.Done():
	default:
		chk.Fail("Expected done channel to be closed after Terminated")
	}

	// A second Terminated must not close the channel again
	chk.NotPanics(ps.Terminated)
}

func TestPoolState_TerminatedRequiresClosing(t *testing.T) {
	chk := require.New(t)
	var ps PoolState
	ps.Init()

	ps.Terminated()
	chk.True(ps.IsOpen())
	select {
	case <-ps.Done():
		chk.Fail("Terminated must not skip the Closing stage")
	default:
	}
}

func TestPoolState_DispatchGuard(t *testing.T) {
	chk := require.New(t)
	var ps PoolState
	ps.Init()

	ps.BeginDispatch()
	chk.PanicsWithValue("Dispatch called while another dispatch is in progress", ps.BeginDispatch)
	ps.EndDispatch(7)

	ps.BeginDispatch()
	ps.AbortDispatch()
	chk.PanicsWithValue("no dispatch in progress", ps.AbortDispatch)

	snap := ps.Snapshot()
	chk.Equal(uint64(1), snap.Dispatches)
	chk.Equal(uint64(7), snap.Indices)
}

func TestPoolState_WorkerCounters(t *testing.T) {
	chk := require.New(t)
	var ps PoolState
	ps.Init()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			ps.WorkerStarted()
		}()
	}
	wg.Wait()
	chk.Equal(int64(workers), ps.Snapshot().Running)

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			ps.WorkerTerminated()
		}()
	}
	wg.Wait()

	snap := ps.Snapshot()
	chk.Zero(snap.Running)
	chk.Equal(int64(workers), snap.Terminated)
	chk.PanicsWithValue("there were no workers running", ps.WorkerTerminated)
}
