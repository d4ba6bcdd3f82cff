package sched

import "sync"

// sleepObject is a park/unpark primitive for one worker: a goroutine
// parks on it while some condition holds and is woken once that
// condition no longer holds. Go's sync.Cond expresses this directly
// and portably.
type sleepObject struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func newSleepObject() *sleepObject {
	s := &sleepObject{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// park blocks while pred returns true, re-checking under the lock
// after every wake signal so spurious or stale wakes are harmless.
func (s *sleepObject) park(pred func() bool) {
	s.mu.Lock()
	for pred() {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// wake unparks every goroutine currently blocked in park. Safe to
// call on an already-awake sleepObject; redundant wakes are cheap and
// calling it more than once is how a wake signal survives a race
// against a worker about to park.
func (s *sleepObject) wake() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}
