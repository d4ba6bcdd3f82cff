package sched

// trySuspend attempts to self-suspend the calling worker. Only the
// worker at index active_count-1 (the "highest" running index) may
// suspend, and only while active_count > min_active and the scheduler
// is not terminating. It returns true only if the worker actually
// parked and was woken; worker 0's drain-and-check path, which restores
// active_count and returns without parking, reports false.
func (w *Worker) trySuspend() bool {
	s := w.sched

	s.countInterlock.Lock()
	active := s.activeCount.Load()
	eligible := active > s.minActive && !w.terminate.Load() && w.index == active-1
	if eligible && w.index == 0 && w.asioNoisy {
		// Worker 0 may only suspend once ASIO has no noisy sources
		// pending.
		eligible = false
	}
	if !eligible {
		s.countInterlock.Unlock()
		return false
	}
	s.activeCount.Store(active - 1)
	s.countInterlock.Unlock()
	if s.metrics != nil {
		s.metrics.ActiveWorkers.Set(float64(active - 1))
	}
	s.log.Debug().Int32("worker", w.index).Int32("active", active-1).Msg("suspend")

	if w.index != 0 {
		// Sent after the decrement so worker 0 observes the new
		// active_count when it processes the message.
		s.send(w.index, 0, kindSuspend, 0, nil)
	}

	if w.index == 0 {
		gained := w.readInbox()
		hasWork := s.inject.size() > 0 || w.localQ.size() > 0
		if gained || hasWork || !w.asioNoisy {
			w.restoreActiveFloor()
			return false
		}
	}

	w.sleep.park(func() bool {
		return !w.terminate.Load() && s.activeCount.Load() <= w.index
	})
	s.log.Debug().Int32("worker", w.index).Msg("wake")

	if w.index == 0 {
		// On wake, worker 0 ensures there is always at least one
		// runnable worker.
		w.restoreActiveFloor()
	}
	return true
}

// restoreActiveFloor ensures active_count >= 1 under the interlock.
func (w *Worker) restoreActiveFloor() {
	s := w.sched
	s.countInterlock.Lock()
	if s.activeCount.Load() < 1 {
		s.activeCount.Store(1)
		if s.metrics != nil {
			s.metrics.ActiveWorkers.Set(1)
		}
	}
	s.countInterlock.Unlock()
}

// maybeWakeup invites one more worker to help: under the interlock it
// increments active_count (bounded by N), then pings every worker
// below the new active_count three times to tolerate lost wakes.
func (s *Scheduler) maybeWakeup(caller int32) {
	s.countInterlock.Lock()
	active := s.activeCount.Load()
	if active < s.n {
		active++
		s.activeCount.Store(active)
	}
	s.countInterlock.Unlock()
	if s.metrics != nil {
		s.metrics.ActiveWorkers.Set(float64(active))
	}
	s.pingActive(caller, active)
}

// wakeAllParked raises active_count to N and pings every worker, used
// on termination broadcast and when recovering from active_count == 0.
func (s *Scheduler) wakeAllParked() {
	s.countInterlock.Lock()
	s.activeCount.Store(s.n)
	s.countInterlock.Unlock()
	if s.metrics != nil {
		s.metrics.ActiveWorkers.Set(float64(s.n))
	}
	s.pingActive(-1, s.n)
}

// pingActive sends a wake signal three times to every worker in
// [0, active) other than caller, tolerating lost/ignored signals for
// threads already awake.
func (s *Scheduler) pingActive(caller int32, active int32) {
	for rep := 0; rep < 3; rep++ {
		for i := int32(0); i < active; i++ {
			if i == caller {
				continue
			}
			s.workers[i].sleep.wake()
		}
	}
}
