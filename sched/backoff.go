package sched

import "runtime"

// quiescent is the per-miss quiescence pump the steal loop polls on
// every failed steal attempt: on worker 0 it checks whether the
// current CNF/ACK round has collected enough ACKs to drive the
// ASIO-stop/terminate handshake, then always issues a short CPU
// backoff. It returns true once TERMINATE has been decided.
func (w *Worker) quiescent() bool {
	if w.terminate.Load() {
		return true
	}
	if w.index == 0 {
		w.maybeCompleteQuiescenceRound()
	}
	w.cpuPause()
	return w.terminate.Load()
}

// cpuPause backs off the processor between failed steal attempts. Go
// has no portable PAUSE intrinsic. The default path yields to the Go
// scheduler with runtime.Gosched(), letting other goroutines (and the
// OS) make progress on the core. With noYield set, it busy-spins
// instead: the iteration returns without giving up the core, which
// costs a full CPU while idle but avoids the latency of a rescheduling
// round trip, useful when workers are pinned one-per-core.
func (w *Worker) cpuPause() {
	if w.sched.opts.noYield {
		return
	}
	runtime.Gosched()
}
