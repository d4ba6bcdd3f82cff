// Package metrics holds the scheduler's prometheus collectors. A
// Scheduler built with a nil *Registry no-ops every call, so metrics
// remain entirely optional.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles the gauges and counters the core scheduler updates.
// It is safe for concurrent use; every field is a prometheus metric
// which is itself concurrency-safe.
type Registry struct {
	ActiveWorkers   prometheus.Gauge
	StealAttempts   prometheus.Counter
	StealSuccesses  prometheus.Counter
	BlockCount      prometheus.Gauge
	MuteMapEntries  prometheus.Gauge
	QuiescenceRound prometheus.Counter
	Terminations    prometheus.Counter
}

// NewRegistry builds and registers a Registry on reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in a long-lived process.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hivesched",
			Name:      "active_workers",
			Help:      "Number of workers currently permitted to run.",
		}),
		StealAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivesched",
			Name:      "steal_attempts_total",
			Help:      "Number of work-stealing attempts across all workers.",
		}),
		StealSuccesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivesched",
			Name:      "steal_successes_total",
			Help:      "Number of work-stealing attempts that found an actor.",
		}),
		BlockCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hivesched",
			Name:      "blocked_workers",
			Help:      "Number of workers that have announced themselves blocked.",
		}),
		MuteMapEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hivesched",
			Name:      "mute_map_entries",
			Help:      "Total receiver keys summed across all worker mute maps.",
		}),
		QuiescenceRound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivesched",
			Name:      "quiescence_rounds_total",
			Help:      "Number of CNF/ACK rounds worker 0 has opened.",
		}),
		Terminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hivesched",
			Name:      "terminations_total",
			Help:      "Number of times the scheduler has reached quiescent termination.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.ActiveWorkers, r.StealAttempts, r.StealSuccesses,
			r.BlockCount, r.MuteMapEntries, r.QuiescenceRound, r.Terminations)
	}
	return r
}
