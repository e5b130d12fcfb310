package metrics

import (
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcilePassTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "pass_total",
		Help:      "Count of reconciliation passes by kind and status.",
	}, []string{"kind", "status"})
	reconcilePassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "pass_duration_seconds",
		Help:      "Duration of reconciliation passes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "status"})
	reconcileApportionLoss = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "apportion_remainder",
		Help:      "Base units of the aggregate left unassigned by floor apportionment.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})
	reconcileObserverErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "observer_errors_total",
		Help:      "Count of snapshot observer failures.",
	}, []string{"observer"})
	reconcileSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "sessions",
		Help:      "Number of connected account sessions.",
	})
	reconcileWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "watchers",
		Help:      "Number of live estimate subscribers.",
	})
)

// Reconciler tracks metrics for the refresh orchestrator.
type Reconciler struct{}

// NewReconciler constructs a Reconciler metrics collector.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ObservePass records a completed reconciliation pass.
func (m Reconciler) ObservePass(kind model.ReconcileKind, err error, started time.Time) {
	s := status(err)
	reconcilePassTotal.WithLabelValues(string(kind), s).Inc()
	reconcilePassDuration.WithLabelValues(string(kind), s).Observe(time.Since(started).Seconds())
}

// ObserveSkipped counts a pass dropped because another of the same kind was in flight.
func (m Reconciler) ObserveSkipped(kind model.ReconcileKind) {
	reconcilePassTotal.WithLabelValues(string(kind), statusSkipped).Inc()
}

// ObserveApportionRemainder records the floor rounding remainder of an apportionment.
func (m Reconciler) ObserveApportionRemainder(remainder uint64) {
	reconcileApportionLoss.Observe(float64(remainder))
}

// ObserveObserverError counts a failed snapshot observer.
func (m Reconciler) ObserveObserverError(observer string) {
	reconcileObserverErrorsTotal.WithLabelValues(orUnknown(observer)).Inc()
}

// SetSessions reports the number of connected sessions.
func (m Reconciler) SetSessions(n int) {
	reconcileSessions.Set(float64(n))
}

// AddWatchers adjusts the live estimate subscriber gauge.
func (m Reconciler) AddWatchers(delta int) {
	reconcileWatchers.Add(float64(delta))
}
