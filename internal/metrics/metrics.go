package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// EngineRunsTotal counts priority engine invocations by operation and result.
	EngineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fixmycity",
		Subsystem: "priority",
		Name:      "engine_runs_total",
		Help:      "Total number of priority engine runs, labeled by operation and result.",
	}, []string{"operation", "result"})

	// EngineDurationSeconds is the time spent inside the engine per run.
	EngineDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fixmycity",
		Subsystem: "priority",
		Name:      "engine_duration_seconds",
		Help:      "Time spent clustering and scoring complaints.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"operation"})

	// ComplaintsScored observes the snapshot size fed into each run.
	ComplaintsScored = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fixmycity",
		Subsystem: "priority",
		Name:      "complaints_per_run",
		Help:      "Number of complaints in the snapshot handed to the engine.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	ComplaintsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fixmycity",
		Subsystem: "complaints",
		Name:      "created_total",
		Help:      "Total number of complaints filed.",
	})

	// GeocodeTotal counts geocoding lookups by outcome (success, default_used).
	GeocodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fixmycity",
		Subsystem: "geocoder",
		Name:      "lookups_total",
		Help:      "Total number of geocoding lookups, labeled by outcome.",
	}, []string{"outcome"})
)

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			EngineRunsTotal,
			EngineDurationSeconds,
			ComplaintsScored,
			ComplaintsCreatedTotal,
			GeocodeTotal,
		)
	})
}
