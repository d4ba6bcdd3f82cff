package sched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopGlobalPrefersInjectQueue(t *testing.T) {
	s := New(WithThreads(1), WithMinThreads(1))
	w0 := s.workers[0]

	local := newStubActor("local")
	injected := newStubActor("injected")
	w0.localQ.pushBack(local)
	s.inject.push(injected)

	require.Same(t, injected, w0.popGlobal())
	require.Same(t, local, w0.popGlobal())
	require.Nil(t, w0.popGlobal())
}

func TestChooseVictimSkipsSelfAndWrapsRevolution(t *testing.T) {
	s := New(WithThreads(3), WithMinThreads(3))
	w1 := s.workers[1]

	seen := map[int32]bool{}
	for i := 0; i < 3; i++ {
		v := w1.chooseVictim()
		require.NotNil(t, v)
		require.NotEqual(t, w1.index, v.index)
		seen[v.index] = true
	}
	// A full revolution visits every other worker before repeating.
	require.Len(t, seen, 2)
}

func TestChooseVictimReturnsNilWithOneActiveWorker(t *testing.T) {
	s := New(WithThreads(1), WithMinThreads(1))
	w0 := s.workers[0]
	require.Nil(t, w0.chooseVictim())
}

func TestStealFindsVictimWork(t *testing.T) {
	s := New(WithThreads(2), WithMinThreads(2), WithASIO(&fixedASIO{stopResults: []bool{true}}))
	w0, w1 := s.workers[0], s.workers[1]

	a := newStubActor("stealable")
	w1.localQ.pushBack(a)

	stolen := w0.chooseVictim()
	require.Same(t, w1, stolen)
	require.Same(t, a, stolen.localQ.stealBack())
}
