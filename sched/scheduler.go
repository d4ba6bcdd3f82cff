package sched

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/orbitrt/hivesched/internal/affinity"
	"github.com/orbitrt/hivesched/internal/metrics"
)

// Context is the handle a caller uses to enqueue actors. A *Worker
// satisfies Context for code running inside the scheduling loop
// (including the actor engine); RegisterThread returns a Context for
// everything else. Go has no portable OS-thread-local storage for
// goroutines, so the context is passed explicitly by the caller rather
// than looked up from the calling thread.
type Context interface {
	// Add schedules actor: on a worker context this pushes to that
	// worker's local queue; on an external context this pushes to the
	// global inject queue.
	Add(actor Actor)
	// Index returns the owning worker's stable index, or -1 for an
	// externally registered thread.
	Index() int32
}

// Add implements Context for a worker: scheduler-thread callers push
// directly to their own local queue.
func (w *Worker) Add(actor Actor) {
	w.localQ.pushBack(actor)
}

// externalContext is the Context handed back by RegisterThread.
type externalContext struct {
	sched *Scheduler
}

func (c *externalContext) Add(actor Actor) { c.sched.inject.push(actor) }
func (c *externalContext) Index() int32    { return -1 }

// Scheduler is the global scheduling state: the fixed worker array,
// the injection queue, the active-worker count, and the
// quiescence-enabled flag.
type Scheduler struct {
	opts *Options

	workers []*Worker
	inject  *injectQueue

	activeCount   atomic.Int32
	minActive     int32
	n             int32
	detectQuiesce atomic.Bool

	// countInterlock serializes every read-modify-write of activeCount
	// across trySuspend/maybeWakeup/wakeAllParked, so concurrent
	// resizes never race each other.
	countInterlock sync.Mutex

	log     zerolog.Logger
	metrics *metrics.Registry

	engine Engine
	asio   ASIO
	cycles CycleDetector

	group    *errgroup.Group
	groupErr error
	started  atomic.Bool
	doneCh   chan struct{}
	doneOnce sync.Once

	externalMu  sync.Mutex
	externalCtx map[*externalContext]struct{}
}

// New allocates the scheduler's fixed-size worker array and
// collaborator wiring. It does not start any goroutines; call Start
// for that.
func New(opts ...Option) *Scheduler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.resolve()

	s := &Scheduler{
		opts:        o,
		inject:      newInjectQueue(),
		minActive:   int32(o.minThreads),
		n:           int32(o.threads),
		log:         o.logger,
		metrics:     o.metrics,
		engine:      o.engine,
		asio:        o.asio,
		cycles:      o.cycleDetector,
		externalCtx: make(map[*externalContext]struct{}),
	}
	s.activeCount.Store(s.n)

	s.workers = make([]*Worker, s.n)
	for i := int32(0); i < s.n; i++ {
		cpu := -1
		if !o.noPin {
			cpu = int(i)
		}
		s.workers[i] = newWorker(s, i, cpu)
	}

	if s.metrics != nil {
		s.metrics.ActiveWorkers.Set(float64(s.n))
	}
	return s
}

// Cores returns N, the fixed worker count.
func (s *Scheduler) Cores() int32 { return s.n }

// ActiveCount returns the current active_count.
func (s *Scheduler) ActiveCount() int32 { return s.activeCount.Load() }

func (s *Scheduler) setDetectQuiescence(v bool) { s.detectQuiesce.Store(v) }

// RegisterThread allocates a minimal Context for an external producer
// thread so it may enqueue into the inject queue safely.
func (s *Scheduler) RegisterThread() Context {
	c := &externalContext{sched: s}
	s.externalMu.Lock()
	s.externalCtx[c] = struct{}{}
	s.externalMu.Unlock()
	return c
}

// UnregisterThread releases a Context returned by RegisterThread.
func (s *Scheduler) UnregisterThread(c Context) {
	ec, ok := c.(*externalContext)
	if !ok {
		return
	}
	s.externalMu.Lock()
	delete(s.externalCtx, ec)
	s.externalMu.Unlock()
}

// SchedAdd is the free-function form of Context.Add: it injects or
// local-pushes actor depending on what kind of ctx it is given.
func SchedAdd(ctx Context, actor Actor) {
	ctx.Add(actor)
}

func (s *Scheduler) affinityPin(w *Worker) {
	if w.cpu < 0 {
		return
	}
	if err := affinity.Pin(w.cpu); err != nil {
		s.log.Debug().Int32("worker", w.index).Int("cpu", w.cpu).Err(err).Msg("affinity pin failed")
	}
}
