package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registryBuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "build_total",
		Help:      "Count of unit registry builds.",
	}, []string{"status"})
	registryBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "build_duration_seconds",
		Help:      "Duration of unit registry builds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	registryBuildUnits = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "build_units",
		Help:      "Number of units in a successfully built registry.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
	registryUnitOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "unit_outcomes_total",
		Help:      "Count of unit detail fetches by outcome.",
	}, []string{"outcome"})
)

// Registry tracks metrics for unit registry builds.
type Registry struct{}

// NewRegistry constructs a Registry metrics collector.
func NewRegistry() *Registry {
	return &Registry{}
}

// ObserveBuild records a build outcome, its duration and size.
func (m Registry) ObserveBuild(err error, units int, started time.Time) {
	s := status(err)
	registryBuildTotal.WithLabelValues(s).Inc()
	registryBuildDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
	if err == nil {
		registryBuildUnits.Observe(float64(units))
	}
}

// ObserveUnitOutcome counts a single unit detail fetch.
func (m Registry) ObserveUnitOutcome(outcome string) {
	registryUnitOutcomesTotal.WithLabelValues(orUnknown(outcome)).Inc()
}
