package sched

// Mute records that sender s would overload receiver r and excludes s
// from scheduling until r drains. It must be called on the worker that
// currently owns s.
func (w *Worker) Mute(s Actor, r Actor) {
	set, ok := w.muteMapping[r]
	if !ok {
		set = make(map[Actor]struct{})
		w.muteMapping[r] = set
		w.sched.bumpMuteMapGauge(1)
	}
	if _, already := set[s]; !already {
		set[s] = struct{}{}
		s.Muted().Add(1)
		w.sched.log.Debug().Int32("worker", w.index).Msg("mute")
	}
}

// startGlobalUnmute broadcasts UNMUTE_ACTOR(r) to every active worker
// once the owning worker observes r has drained below its overloaded
// threshold.
func (w *Worker) startGlobalUnmute(r Actor) {
	w.sched.log.Debug().Int32("worker", w.index).Msg("unmute broadcast")
	w.sched.broadcastActive(w.index, kindUnmuteActor, 0, r)
}

// unmuteFor runs the unmute procedure for receiver r against this
// worker's own mute map, returning true if the local run queue gained
// work.
func (w *Worker) unmuteFor(r Actor) bool {
	set, ok := w.muteMapping[r]
	if !ok {
		return false
	}
	delete(w.muteMapping, r)
	w.sched.bumpMuteMapGauge(-1)

	gained := false
	for s := range set {
		if s.Muted().Add(-1) != 0 {
			continue
		}
		w.sched.engine.UnmuteActor(s)
		w.sched.log.Debug().Int32("worker", w.index).Msg("unmute")
		if HasFlag(s, FlagUnscheduled) {
			continue
		}
		w.localQ.pushBack(s)
		gained = true
		// s may itself be a receiver key in other workers' mute maps:
		// the cascade strictly shrinks total map population, so it
		// always terminates.
		w.sched.broadcastActive(w.index, kindUnmuteActor, 0, s)
	}
	return gained
}

// bumpMuteMapGauge adds delta (+1 for a new receiver key, -1 for a
// removed one) to the summed mute-map gauge, so no worker reads
// another worker's map.
func (s *Scheduler) bumpMuteMapGauge(delta float64) {
	if s.metrics == nil {
		return
	}
	s.metrics.MuteMapEntries.Add(delta)
}
