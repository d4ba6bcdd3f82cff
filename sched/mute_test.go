package sched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMuteUnmuteRoundTrip(t *testing.T) {
	s := New(WithThreads(2), WithMinThreads(2))
	w0, w1 := s.workers[0], s.workers[1]

	r := newStubActor("receiver")
	send := newStubActor("sender")

	w0.Mute(send, r)
	require.Equal(t, int32(1), send.Muted().Load())
	require.Contains(t, w0.muteMapping, Actor(r))

	// r drains and broadcasts UNMUTE_ACTOR(r); deliver it directly to
	// w0's inbox the way broadcastActive would.
	w0.box.push(envelope{from: 1, kind: kindUnmuteActor, actor: r})
	gained := w0.readInbox()

	require.True(t, gained)
	require.Equal(t, int32(0), send.Muted().Load())
	require.Equal(t, 1, w0.localQ.size())
	require.Same(t, send, w0.localQ.popFront())
	require.NotContains(t, w0.muteMapping, Actor(r))

	_ = w1
}

func TestMuteSkipsUnscheduledActor(t *testing.T) {
	s := New(WithThreads(1), WithMinThreads(1))
	w0 := s.workers[0]

	r := newStubActor("receiver")
	send := newStubActor("sender")
	send.flags = FlagUnscheduled

	w0.Mute(send, r)
	gained := w0.unmuteFor(r)

	require.False(t, gained)
	require.Equal(t, int32(0), send.Muted().Load())
	require.Equal(t, 0, w0.localQ.size())
}

func TestMuteMapTracksReceiverKeys(t *testing.T) {
	s := New(WithThreads(1), WithMinThreads(1))
	w0 := s.workers[0]

	r1, r2 := newStubActor("r1"), newStubActor("r2")
	s1, s2 := newStubActor("s1"), newStubActor("s2")

	w0.Mute(s1, r1)
	w0.Mute(s2, r2)
	require.Len(t, w0.muteMapping, 2)

	w0.unmuteFor(r1)
	require.Len(t, w0.muteMapping, 1)
	require.Contains(t, w0.muteMapping, Actor(r2))
}
