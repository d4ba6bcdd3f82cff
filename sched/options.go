package sched

import (
	"io"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/orbitrt/hivesched/internal/metrics"
	"github.com/orbitrt/hivesched/internal/obslog"
)

// batchLimit caps how many messages an actor runs before the worker
// moves on to the next runnable actor, keeping any single actor from
// monopolizing a worker.
const batchLimit = 100

// stealTickGate is the minimum dwell time an unsuccessful steal
// sequence must reach before a BLOCK/SUSPEND announcement is made.
// Go has no portable cycle counter, so this is expressed as a
// wall-clock budget rather than a tick count. The gate exists to
// avoid sending BLOCK/UNBLOCK pairs for trivially-quick successful
// steals.
const stealTickGate = 200 * time.Microsecond

// Options configures a Scheduler at construction time.
type Options struct {
	threads       int // 0 means auto (runtime.NumCPU())
	minThreads    int
	noYield       bool
	noPin         bool
	pinASIO       bool
	asioCPU       int
	library       bool
	detectQuiesce *bool // nil means "derive from the library flag at Start"
	logger        zerolog.Logger
	metrics       *metrics.Registry
	engine        Engine
	asio          ASIO
	cycleDetector CycleDetector
}

// Option mutates Options using the functional-options pattern.
type Option func(*Options)

// WithThreads sets the worker count. 0 (the default) means
// runtime.NumCPU().
func WithThreads(n int) Option { return func(o *Options) { o.threads = n } }

// WithMinThreads sets the floor active_count may not be reduced below.
// It is clamped to threads at construction.
func WithMinThreads(n int) Option { return func(o *Options) { o.minThreads = n } }

// WithNoYield selects the CPU-pause backoff strategy used between
// failed steal attempts: when set, workers busy-spin instead of
// yielding to the Go scheduler with runtime.Gosched(). Busy-spinning
// avoids rescheduling latency at the cost of burning a full CPU while
// idle; it suits a worker pinned one-per-core more than a
// general-purpose deployment.
func WithNoYield(v bool) Option { return func(o *Options) { o.noYield = v } }

// WithNoPin disables CPU affinity pinning for worker threads.
func WithNoPin(v bool) Option { return func(o *Options) { o.noPin = v } }

// WithPinASIO pins the ASIO pseudo-thread to a dedicated CPU: ASIO.Init
// receives the CPU chosen by WithASIOCPU when set, and -1 otherwise.
func WithPinASIO(v bool) Option { return func(o *Options) { o.pinASIO = v } }

// WithASIOCPU selects which CPU ASIO is pinned to when WithPinASIO is set.
func WithASIOCPU(cpu int) Option { return func(o *Options) { o.asioCPU = cpu } }

// WithLogger sets the structured logger every component writes to.
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.logger = l } }

// WithLogWriter is a convenience wrapper constructing a logger at the
// given level writing to w (nil means os.Stderr).
func WithLogWriter(w io.Writer, level zerolog.Level) Option {
	return func(o *Options) { o.logger = obslog.New(w, level) }
}

// WithMetrics attaches a prometheus registry. Without this option (the
// default) the scheduler runs without metrics; passing nil builds the
// collectors and updates them without registering them anywhere.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Options) { o.metrics = metrics.NewRegistry(reg) }
}

// WithEngine sets the actor execution engine collaborator. Required:
// without it, the default engine runs nothing and drops every actor it
// is handed (RunActor reports no reschedule).
func WithEngine(e Engine) Option { return func(o *Options) { o.engine = e } }

// WithASIO sets the asynchronous I/O subsystem collaborator.
func WithASIO(a ASIO) Option { return func(o *Options) { o.asio = a } }

// WithCycleDetector sets the garbage-collector cycle-detector collaborator.
func WithCycleDetector(c CycleDetector) Option { return func(o *Options) { o.cycleDetector = c } }

// WithDetectQuiescence forces detect_quiescence's initial value,
// overriding the library flag passed to Start. Without this option,
// Start derives the initial value itself: true when library is false,
// false when library is true.
func WithDetectQuiescence(v bool) Option { return func(o *Options) { o.detectQuiesce = &v } }

func defaultOptions() *Options {
	return &Options{
		threads:       0,
		minThreads:    -1,
		noYield:       false,
		noPin:         false,
		pinASIO:       false,
		asioCPU:       0,
		logger:        obslog.Nop(),
		engine:        noopEngine{},
		asio:          noopASIO{},
		cycleDetector: noopCycleDetector{},
	}
}

func (o *Options) resolve() {
	if o.threads <= 0 {
		o.threads = runtime.NumCPU()
	}
	if o.minThreads < 0 {
		o.minThreads = 1
	}
	if o.minThreads > o.threads {
		o.minThreads = o.threads
	}
	if !o.pinASIO {
		o.asioCPU = -1
	}
}

// noopEngine/noopASIO/noopCycleDetector let the scheduler run
// quiescence-only scenarios without requiring an embedder to supply
// real collaborators.
type noopEngine struct{}

func (noopEngine) RunActor(*Worker, Actor, int) bool { return false }
func (noopEngine) UnmuteActor(Actor)                 {}

type noopASIO struct{}

func (noopASIO) Init(int)    {}
func (noopASIO) Start() bool { return true }
func (noopASIO) Stop() bool  { return true }

type noopCycleDetector struct{}

func (noopCycleDetector) Terminate(*Worker) {}
