package sched

import "sync/atomic"

// Flag is a bitset of engine-owned actor flags. The only flag the
// core scheduler inspects is FlagUnscheduled.
type Flag uint32

const (
	// FlagUnscheduled marks an actor that must not be re-added to any
	// run queue when it is unmuted.
	FlagUnscheduled Flag = 1 << iota
)

// Actor is the opaque handle the scheduler schedules. The actor's
// internal state (mailbox, behavior, GC bookkeeping) belongs entirely
// to the actor engine; the core only reads Muted and Flags.
type Actor interface {
	// Muted is the engine-owned overload counter. The core increments
	// it on mute and decrements it on unmute, re-adding a sender to a
	// run queue only once the count drops to zero; it does not check
	// the count before scheduling an actor, so the owning engine must
	// honor it.
	Muted() *atomic.Int32

	// Flags returns the actor's current flag bitset.
	Flags() Flag
}

// HasFlag reports whether actor carries flag f.
func HasFlag(a Actor, f Flag) bool {
	return a.Flags()&f != 0
}

// Engine runs actors; it owns mailboxes, behaviors, and GC bookkeeping
// entirely outside the scheduler core, which only calls it by contract.
type Engine interface {
	// RunActor runs up to batchLimit messages of actor and reports
	// whether it should be rescheduled.
	RunActor(ctx *Worker, actor Actor, batchLimit int) (reschedule bool)

	// UnmuteActor clears any engine-side muted bookkeeping before the
	// actor is re-scheduled.
	UnmuteActor(actor Actor)
}

// ASIO is the asynchronous I/O subsystem collaborator, out of scope
// for the core scheduler.
type ASIO interface {
	Init(cpu int)
	Start() bool
	// Stop attempts to halt ASIO; it returns false ("noisy, refuse")
	// when external sources remain pending.
	Stop() bool
}

// CycleDetector is the garbage-collector cycle detector collaborator,
// invoked once at shutdown on worker 0's context.
type CycleDetector interface {
	Terminate(ctx *Worker)
}
