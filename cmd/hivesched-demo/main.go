// Command hivesched-demo exercises the scheduler against a flood of
// self-rescheduling actors that drain to quiescence, injected from an
// external producer thread via the inject queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbitrt/hivesched/internal/obslog"
	"github.com/orbitrt/hivesched/sched"
)

// countingActor is a minimal Actor: it reschedules itself a fixed
// number of times, bumping a shared counter on every run, then stops.
type countingActor struct {
	muted     atomic.Int32
	remaining atomic.Int32
	total     *atomic.Int64
}

func newCountingActor(runs int32, total *atomic.Int64) *countingActor {
	a := &countingActor{total: total}
	a.remaining.Store(runs)
	return a
}

func (a *countingActor) Muted() *atomic.Int32 { return &a.muted }
func (a *countingActor) Flags() sched.Flag    { return 0 }

// demoEngine implements sched.Engine for countingActor values only.
type demoEngine struct {
	log zerolog.Logger
}

func (e demoEngine) RunActor(ctx *sched.Worker, actor sched.Actor, batchLimit int) bool {
	a, ok := actor.(*countingActor)
	if !ok {
		return false
	}
	a.total.Add(1)
	return a.remaining.Add(-1) > 0
}

func (e demoEngine) UnmuteActor(sched.Actor) {}

// demoASIO is a no-op ASIO collaborator that is never noisy, so the
// quiescence round always stops it on the first try.
type demoASIO struct{}

func (demoASIO) Init(int)    {}
func (demoASIO) Start() bool { return true }
func (demoASIO) Stop() bool  { return true }

type demoCycles struct{ log zerolog.Logger }

func (c demoCycles) Terminate(ctx *sched.Worker) {
	c.log.Debug().Msg("cycle detector terminate hook invoked")
}

func main() {
	threads := flag.Int("threads", 4, "worker thread count")
	minThreads := flag.Int("min-threads", 1, "minimum active worker threads")
	actors := flag.Int("actors", 1000, "number of actors to inject")
	runsPerActor := flag.Int("runs", 5, "run count per actor")
	flag.Parse()

	log := obslog.New(os.Stderr, zerolog.InfoLevel)

	var total atomic.Int64
	engine := demoEngine{log: log}

	s := sched.New(
		sched.WithThreads(*threads),
		sched.WithMinThreads(*minThreads),
		sched.WithEngine(engine),
		sched.WithASIO(demoASIO{}),
		sched.WithCycleDetector(demoCycles{log: log}),
		sched.WithLogger(log),
	)

	// Non-library Start blocks until quiescence, so every actor must be
	// injected before it is called.
	ext := s.RegisterThread()
	for i := 0; i < *actors; i++ {
		sched.SchedAdd(ext, newCountingActor(int32(*runsPerActor), &total))
	}
	s.UnregisterThread(ext)

	if err := s.Start(false); err != nil {
		log.Fatal().Err(err).Msg("scheduler failed to reach quiescence")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler did not shut down in time")
	}

	fmt.Printf("actors=%d runs_each=%d total_invocations=%d active_count=%d\n",
		*actors, *runsPerActor, total.Load(), s.ActiveCount())
}
