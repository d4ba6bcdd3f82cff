//go:build linux

// Package affinity pins the calling OS thread to a single CPU using
// golang.org/x/sys/unix, so a worker goroutine and its run queue stay
// on the same core for the lifetime of the scheduler.
package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its current OS thread and sets
// that thread's CPU affinity mask to the single cpu given. cpu < 0
// disables pinning.
func Pin(cpu int) error {
	if cpu < 0 {
		return nil
	}
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// Unpin releases the OS-thread lock taken by Pin. It does not restore
// the prior affinity mask; callers that need that should not pin in
// the first place.
func Unpin() {
	runtime.UnlockOSThread()
}
