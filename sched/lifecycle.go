package sched

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Start launches N worker goroutines and starts ASIO. library selects
// the embedding mode: true leaves quiescence detection under the
// caller's control (organic termination only follows a later Stop),
// and Start returns as soon as the workers are running; false enables
// quiescence detection immediately and Start blocks synchronously
// until the scheduler reaches it, matching a standalone program that
// is expected to run to completion.
func (s *Scheduler) Start(library bool) error {
	if !s.started.CompareAndSwap(false, true) {
		return newSchedErr(InitFailure, "scheduler already started", nil)
	}
	if s.n <= 0 {
		return newSchedErr(InitFailure, "zero worker threads configured", nil)
	}

	s.opts.library = library
	if s.opts.detectQuiesce != nil {
		s.setDetectQuiescence(*s.opts.detectQuiesce)
	} else {
		s.setDetectQuiescence(!library)
	}

	s.doneCh = make(chan struct{})
	s.asio.Init(s.opts.asioCPU)
	if !s.asio.Start() {
		s.started.Store(false)
		return newSchedErr(InitFailure, "asio failed to start", nil)
	}

	g, _ := errgroup.WithContext(context.Background())
	s.group = g

	for _, w := range s.workers {
		w := w
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = newSchedErr(InvariantViolation, fmt.Sprintf("worker %d panicked: %v", w.index, r), nil)
				}
			}()
			s.affinityPin(w)
			w.mainLoop()
			return nil
		})
	}

	go func() {
		s.groupErr = g.Wait()
		s.doneOnce.Do(func() { close(s.doneCh) })
	}()

	s.log.Info().Int32("threads", s.n).Int32("min_threads", s.minActive).Msg("scheduler started")

	if !library {
		<-s.doneCh
		return s.groupErr
	}
	return nil
}

// SetDetectQuiescence toggles quiescence detection at runtime without
// joining. It is a no-op once the scheduler has already decided to
// terminate.
func (s *Scheduler) SetDetectQuiescence(v bool) {
	s.setDetectQuiescence(v)
	if v {
		// Kick worker 0 so it re-evaluates block_count against the new
		// flag without waiting for the next organic BLOCK/SUSPEND. A
		// SUSPEND message makes worker 0 run maybeStartQuiescenceRound
		// without touching block_count.
		s.send(-1, 0, kindSuspend, 0, nil)
		s.workers[0].sleep.wake()
	}
}

// Stop forces detect_quiescence on and blocks until the organic
// CNF/ACK termination handshake completes. Unlike Shutdown it performs
// no resource teardown; call Shutdown afterward to release ASIO and
// the cycle detector.
func (s *Scheduler) Stop() error {
	s.SetDetectQuiescence(true)
	<-s.doneCh
	return s.groupErr
}

// Shutdown blocks until every worker goroutine has returned, or ctx is
// done first, then stops ASIO and runs the cycle detector's final
// sweep.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if !s.started.Load() {
		return nil
	}
	select {
	case <-s.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}
	if !s.asio.Stop() {
		s.log.Debug().Msg("asio stop refused during shutdown")
	}
	s.cycles.Terminate(s.workers[0])
	s.log.Info().Msg("scheduler shut down")
	return nil
}

// Done returns a channel closed once every worker goroutine has
// returned, for callers that want to select on shutdown completion
// alongside other events instead of calling the blocking Shutdown.
func (s *Scheduler) Done() <-chan struct{} {
	return s.doneCh
}
