package sched

// send delivers one control message from `from` to worker `to`.
func (s *Scheduler) send(from int32, to int32, k kind, token uint64, actor Actor) {
	s.workers[to].box.push(envelope{from: from, kind: k, token: token, actor: actor})
}

// broadcastActive sends msg to every worker in [0, active_count),
// including the sender. Used for the CNF round and the UNMUTE_ACTOR
// broadcast.
func (s *Scheduler) broadcastActive(from int32, k kind, token uint64, actor Actor) {
	n := s.activeCount.Load()
	for i := int32(0); i < n; i++ {
		s.send(from, i, k, token, actor)
	}
}

// broadcastAll sends msg to every worker 0..N-1 regardless of
// active_count. Used for the TERMINATE broadcast.
func (s *Scheduler) broadcastAll(from int32, k kind, token uint64, actor Actor) {
	for i := int32(0); i < s.n; i++ {
		s.send(from, i, k, token, actor)
	}
}

// readInbox drains self's inbox non-blocking, dispatches every
// message, and reports whether any dispatched message caused the
// local run queue to gain work.
func (w *Worker) readInbox() bool {
	msgs := w.box.drain()
	if msgs == nil {
		return false
	}

	gained := false
	for _, m := range msgs {
		switch m.kind {
		case kindSuspend:
			// Only worker 0 drives quiescence; suspension already
			// decremented active_count, which is what the hypothesis
			// compares against.
			invariant(w.index == 0, "SUSPEND delivered to non-zero worker")
			w.maybeStartQuiescenceRound()

		case kindBlock:
			invariant(w.index == 0, "BLOCK delivered to non-zero worker")
			w.blockCount++
			if w.sched.metrics != nil {
				w.sched.metrics.BlockCount.Set(float64(w.blockCount))
			}
			w.maybeStartQuiescenceRound()

		case kindUnblock:
			invariant(w.index == 0, "UNBLOCK delivered to non-zero worker")
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

		case kindCNF:
			// Echo the token back as ACK(token) to worker 0, the sole
			// driver of the CNF/ACK cycle.
			w.sched.send(w.index, 0, kindACK, m.token, nil)

		case kindACK:
			invariant(w.index == 0, "ACK delivered to non-zero worker")
			if m.token == w.ackToken {
				w.ackCount++
			}

		case kindTerminate:
			w.sched.log.Debug().Int32("worker", w.index).Msg("terminate")
			w.terminate.Store(true)

		case kindUnmuteActor:
			if w.unmuteFor(m.actor) {
				gained = true
			}

		case kindNoisyASIO:
			w.asioNoisy = true

		case kindUnnoisyASIO:
			w.asioNoisy = false
		}
	}
	return gained
}
