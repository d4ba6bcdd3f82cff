package sched

// maybeStartQuiescenceRound opens a CNF/ACK hypothesis when
// block_count reaches active_count. Only worker 0 calls this; it is
// triggered by BLOCK and SUSPEND deliveries.
func (w *Worker) maybeStartQuiescenceRound() {
	if !w.sched.detectQuiesce.Load() {
		return
	}
	active := uint32(w.sched.activeCount.Load())
	if w.blockCount >= active {
		w.openQuiescenceRound()
	}
}

// openQuiescenceRound advances the token (invalidating any in-flight
// ACKs from a prior round), zeroes the ack counter, and broadcasts CNF
// to every active worker including itself. The token is bumped on
// every opened round, not only on UNBLOCK, so that it also invalidates
// a stale round if an UNBLOCK/BLOCK pair races the hypothesis.
func (w *Worker) openQuiescenceRound() {
	w.ackToken++
	w.ackCount = 0
	if w.sched.metrics != nil {
		w.sched.metrics.QuiescenceRound.Inc()
	}
	w.sched.log.Debug().Int32("worker", w.index).Uint64("token", w.ackToken).Msg("quiescence round open")
	w.sched.broadcastActive(w.index, kindCNF, w.ackToken, nil)
}

// maybeCompleteQuiescenceRound checks whether enough ACKs for the
// current token have arrived and, if so, drives a two-round ASIO-stop
// handshake: a first round stops ASIO (re-arming on refusal), a second
// round confirms no noisy event raced the stop, then TERMINATE is
// broadcast.
func (w *Worker) maybeCompleteQuiescenceRound() {
	active := uint32(w.sched.activeCount.Load())
	if w.ackCount < active {
		return
	}

	if !w.asioStopd {
		if w.sched.asio.Stop() {
			w.asioStopd = true
		} else {
			w.sched.log.Debug().Msg("asio stop refused, re-arming quiescence round")
		}
		// Either a successful stop or a refusal re-arms: a refusal must
		// retry, and a success must be confirmed by a second round in
		// case ASIO raced a new noisy event in between.
		w.openQuiescenceRound()
		return
	}

	w.sched.log.Info().Msg("quiescence confirmed, broadcasting terminate")
	if w.sched.metrics != nil {
		w.sched.metrics.Terminations.Inc()
	}
	w.sched.broadcastAll(w.index, kindTerminate, 0, nil)
	w.sched.wakeAllParked()
	w.terminate.Store(true)
}
