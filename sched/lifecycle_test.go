package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestTrivialQuiescenceTerminates verifies that an empty program with
// two workers reaches quiescence and terminates on its own once
// started in non-library mode.
func TestTrivialQuiescenceTerminates(t *testing.T) {
	s := New(WithThreads(2), WithMinThreads(1))
	require.NoError(t, s.Start(false))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	for _, w := range s.workers {
		require.True(t, w.terminate.Load())
	}
}

// runOnceActor reschedules exactly zero times: RunActor returns false
// on the first invocation.
type runOnceActor struct {
	stubActor
	ran atomic.Bool
}

type runOnceEngine struct{}

func (runOnceEngine) RunActor(ctx *Worker, actor Actor, batchLimit int) bool {
	a := actor.(*runOnceActor)
	a.ran.Store(true)
	return false
}
func (runOnceEngine) UnmuteActor(Actor) {}

func TestSingleActorRunThenQuiesces(t *testing.T) {
	s := New(WithThreads(2), WithMinThreads(1), WithEngine(runOnceEngine{}))
	a := &runOnceActor{stubActor: stubActor{name: "solo"}}
	s.inject.push(a)

	require.NoError(t, s.Start(false))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	require.True(t, a.ran.Load())
}

// reschedulingEngine runs each actor for a fixed number of batches
// before letting it drop.
type reschedulingEngine struct {
	runs *atomic.Int64
}

func (e reschedulingEngine) RunActor(ctx *Worker, actor Actor, batchLimit int) bool {
	a := actor.(*countingStubActor)
	e.runs.Add(1)
	return a.remaining.Add(-1) > 0
}
func (e reschedulingEngine) UnmuteActor(Actor) {}

type countingStubActor struct {
	stubActor
	remaining atomic.Int32
}

func TestFourWorkersRunAllInjectedWork(t *testing.T) {
	var runs atomic.Int64
	const actorCount = 200
	const runsEach = 5

	s := New(WithThreads(4), WithMinThreads(4), WithEngine(reschedulingEngine{runs: &runs}))
	for i := 0; i < actorCount; i++ {
		a := &countingStubActor{}
		a.remaining.Store(runsEach)
		s.inject.push(a)
	}

	require.NoError(t, s.Start(false))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	require.Equal(t, int64(actorCount*runsEach), runs.Load())
}

// TestStopEnablesQuiescenceAndJoins verifies the library-mode
// boundary: Start(true) must not drive quiescence on its own, and Stop
// is what both enables detectQuiesce and blocks until the organic
// CNF/ACK round completes.
func TestStopEnablesQuiescenceAndJoins(t *testing.T) {
	s := New(WithThreads(2), WithMinThreads(2), WithDetectQuiescence(false))
	require.NoError(t, s.Start(true))

	select {
	case <-s.Done():
		t.Fatal("library-mode start must not terminate on its own")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.Stop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}
