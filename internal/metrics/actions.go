package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "actions",
		Name:      "submitted_total",
		Help:      "Count of submitted write actions.",
	}, []string{"action", "status"})
	actionsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "actions",
		Name:      "duration_seconds",
		Help:      "Duration of write actions including signer round trip.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"action", "status"})
	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "publisher",
		Name:      "publish_total",
		Help:      "Count of snapshot publications.",
	}, []string{"status"})
)

// Actions tracks metrics for write actions.
type Actions struct{}

// NewActions constructs an Actions metrics collector.
func NewActions() *Actions {
	return &Actions{}
}

// ObserveAction records an action outcome.
func (m Actions) ObserveAction(action string, err error, started time.Time) {
	s := status(err)
	actionsTotal.WithLabelValues(action, s).Inc()
	actionsDuration.WithLabelValues(action, s).Observe(time.Since(started).Seconds())
}

// Publisher tracks snapshot publications.
type Publisher struct{}

// NewPublisher constructs a Publisher metrics collector.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// ObservePublish records one publication.
func (m Publisher) ObservePublish(err error) {
	publishTotal.WithLabelValues(status(err)).Inc()
}
