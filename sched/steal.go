package sched

import "time"

// popGlobal fetches this worker's own next unit of work: the global
// inject queue is always tried first (so injected/external work gains
// latency), then the worker's own local queue.
func (w *Worker) popGlobal() Actor {
	if a := w.sched.inject.pop(); a != nil {
		return a
	}
	return w.localQ.popFront()
}

// chooseVictim walks victims round-robin starting one before
// lastVictim and wrapping within [0, active_count), skipping self.
// When a full revolution completes without finding a distinct victim,
// lastVictim resets to self and nil is returned.
func (w *Worker) chooseVictim() *Worker {
	s := w.sched
	active := s.activeCount.Load()
	if active <= 1 {
		w.lastVictim = w.index
		return nil
	}

	origin := w.lastVictim
	v := origin
	for {
		v--
		if v < 0 {
			v = active - 1
		}
		if v == origin {
			w.lastVictim = w.index
			return nil
		}
		if v == w.index {
			continue
		}
		w.lastVictim = v
		return s.workers[v]
	}
}

// steal repeatedly attempts to find an actor to run: first from a
// round-robin victim's local queue, then via inbox-driven self-steal
// (an UNMUTE_ACTOR that rescheduled locally), backing off and pumping
// quiescence on every miss. Past a full failed revolution and a
// minimum dwell time, and only while holding no mutes, it announces
// itself blocked and/or attempts to suspend. It returns nil only once
// termination has been decided.
func (w *Worker) steal() Actor {
	blockSent := false
	w.stealAttempts = 0
	start := time.Now()

	for {
		victim := w.chooseVictim()
		if victim != nil {
			if w.sched.metrics != nil {
				w.sched.metrics.StealAttempts.Inc()
			}
			if a := victim.localQ.stealBack(); a != nil {
				if w.sched.metrics != nil {
					w.sched.metrics.StealSuccesses.Inc()
				}
				if blockSent {
					w.sendUnblock()
				}
				return a
			}
		}

		if w.readInbox() {
			// An actor was unmuted into our own queue: effectively
			// stealing from ourselves. Verify the pop still succeeds,
			// since another worker may have stolen it first.
			if a := w.popGlobal(); a != nil {
				if blockSent {
					w.sendUnblock()
				}
				return a
			}
		}

		if w.quiescent() {
			return nil
		}

		w.stealAttempts++
		active := int(w.sched.activeCount.Load())
		if w.stealAttempts < active {
			continue
		}
		if time.Since(start) < stealTickGate || len(w.muteMapping) != 0 {
			continue
		}

		if !blockSent && !w.asioNoisy {
			w.sendBlock()
			blockSent = true
		}
		if w.trySuspend() {
			// The worker parked and has been woken: restart the
			// revolution against the fresh active_count.
			w.stealAttempts = 0
			start = time.Now()
		}
	}
}

// sendBlock announces this worker as blocked to worker 0, the only
// worker that tracks blockCount and drives quiescence rounds.
func (w *Worker) sendBlock() {
	w.sched.log.Debug().Int32("worker", w.index).Msg("block")
	if w.index == 0 {
		w.blockCount++
		if w.sched.metrics != nil {
			w.sched.metrics.BlockCount.Set(float64(w.blockCount))
		}
		w.maybeStartQuiescenceRound()
		return
	}
	w.sched.send(w.index, 0, kindBlock, 0, nil)
}

// sendUnblock cancels a prior BLOCK announcement.
func (w *Worker) sendUnblock() {
	w.sched.log.Debug().Int32("worker", w.index).Msg("unblock")
	if w.index == 0 {
		if w.asioStopd {
			w.sched.asio.Init(w.sched.opts.asioCPU)
			w.asioStopd = !w.sched.asio.Start()
		}
		w.blockCount--
		w.ackToken++
		w.ackCount = 0
		if w.sched.metrics != nil {
			w.sched.metrics.BlockCount.Set(float64(w.blockCount))
		}
		return
	}
	w.sched.send(w.index, 0, kindUnblock, 0, nil)
}

// mainLoop is the worker's scheduling loop: drain inbox, pop an actor,
// run a batch, then push it back or move on to whatever was popped
// next.
func (w *Worker) mainLoop() {
	w.current = w.popGlobal()

	for !w.terminate.Load() {
		if w.readInbox() && w.current == nil {
			w.current = w.popGlobal()
		}

		if w.current == nil {
			w.current = w.steal()
			if w.current == nil {
				return
			}
		}

		if len(w.muteMapping) > 0 {
			w.sched.maybeWakeup(w.index)
		}

		reschedule := w.sched.engine.RunActor(w, w.current, batchLimit)
		next := w.popGlobal()

		if reschedule {
			if next != nil {
				w.localQ.pushBack(w.current)
				w.current = next
			}
		} else {
			w.current = next
		}
	}
}
