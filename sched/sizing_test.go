package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTrySuspendRefusesAtMinActiveFloor(t *testing.T) {
	s := New(WithThreads(4), WithMinThreads(4))
	w := s.workers[3]
	require.False(t, w.trySuspend())
	require.Equal(t, int32(4), s.activeCount.Load())
}

func TestTrySuspendRefusesNonHighestIndex(t *testing.T) {
	s := New(WithThreads(4), WithMinThreads(1))
	// Worker 1 is not active_count-1 (3), so it must not suspend even
	// though active_count > min_active.
	require.False(t, s.workers[1].trySuspend())
	require.Equal(t, int32(4), s.activeCount.Load())
}

func TestTrySuspendShrinksHighestIndexFirst(t *testing.T) {
	s := New(WithThreads(4), WithMinThreads(1))
	w3 := s.workers[3]

	done := make(chan bool, 1)
	go func() { done <- w3.trySuspend() }()

	require.Eventually(t, func() bool {
		return s.activeCount.Load() == 3
	}, time.Second, time.Millisecond)

	s.wakeAllParked()
	require.True(t, <-done)
	require.Equal(t, int32(4), s.activeCount.Load())
}

func TestMaybeWakeupRaisesActiveCountBoundedByN(t *testing.T) {
	s := New(WithThreads(3), WithMinThreads(1))
	s.activeCount.Store(1)

	s.maybeWakeup(0)
	require.Equal(t, int32(2), s.activeCount.Load())

	s.maybeWakeup(0)
	require.Equal(t, int32(3), s.activeCount.Load())

	// Already at N: maybeWakeup must not overshoot.
	s.maybeWakeup(0)
	require.Equal(t, int32(3), s.activeCount.Load())
}

func TestWorkerZeroFastPathSkipsParkingWhenWorkPending(t *testing.T) {
	s := New(WithThreads(1), WithMinThreads(0))
	w0 := s.workers[0]
	w0.localQ.pushBack(newStubActor("pending"))

	parked := w0.trySuspend()
	require.False(t, parked, "worker 0 must not park while work is pending")
	require.Equal(t, int32(1), s.activeCount.Load())
}
