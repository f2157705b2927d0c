package orchestrator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report run activity.
type Metrics struct {
	runDuration     *prometheus.HistogramVec
	runIterations   *prometheus.HistogramVec
	toolInvocations *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	runsActive      prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// defaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. Collectors are created only once to avoid
// duplicate registration panics when multiple orchestrators are constructed
// (unit tests, per-model instances in the serving layer).
func defaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided
// registerer. Callers needing isolated metric names (tests) supply a fresh
// registry. Registration errors other than AlreadyRegistered panic, which
// mirrors promauto semantics and surfaces configuration bugs early.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reagent",
			Subsystem: "orchestrator",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full orchestration run.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	runIterations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reagent",
			Subsystem: "orchestrator",
			Name:      "run_iterations",
			Help:      "Tool-executing iterations performed per run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15, 20},
		},
		[]string{"status"},
	)
	toolInvocations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reagent",
			Subsystem: "orchestrator",
			Name:      "tool_invocations_total",
			Help:      "Tool invocations dispatched through the registry.",
		},
		[]string{"tool"},
	)
	toolDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reagent",
			Subsystem: "orchestrator",
			Name:      "tool_duration_seconds",
			Help:      "Duration of individual tool invocations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
	runsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "reagent",
			Subsystem: "orchestrator",
			Name:      "runs_active",
			Help:      "Number of runs currently executing.",
		},
	)

	collectors := []prometheus.Collector{runDuration, runIterations, toolInvocations, toolDuration, runsActive}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch collector {
				case runDuration:
					runDuration = already.ExistingCollector.(*prometheus.HistogramVec)
				case runIterations:
					runIterations = already.ExistingCollector.(*prometheus.HistogramVec)
				case toolInvocations:
					toolInvocations = already.ExistingCollector.(*prometheus.CounterVec)
				case toolDuration:
					toolDuration = already.ExistingCollector.(*prometheus.HistogramVec)
				case runsActive:
					runsActive = already.ExistingCollector.(prometheus.Gauge)
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{
		runDuration:     runDuration,
		runIterations:   runIterations,
		toolInvocations: toolInvocations,
		toolDuration:    toolDuration,
		runsActive:      runsActive,
	}
}

// ObserveRun records the outcome of a completed (or aborted) run.
func (m *Metrics) ObserveRun(status string, iterations int, duration time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.runIterations.WithLabelValues(status).Observe(float64(iterations))
}

// ObserveToolInvocation records one dispatch through the registry.
func (m *Metrics) ObserveToolInvocation(tool string, duration time.Duration) {
	if m == nil {
		return
	}
	m.toolInvocations.WithLabelValues(tool).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// IncActiveRuns marks a run as started.
func (m *Metrics) IncActiveRuns() {
	if m == nil {
		return
	}
	m.runsActive.Inc()
}

// DecActiveRuns marks a run as finished.
func (m *Metrics) DecActiveRuns() {
	if m == nil {
		return
	}
	m.runsActive.Dec()
}
