package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc_client",
		Name:      "operations_total",
		Help:      "Count of contract gateway operations.",
	}, []string{"operation", "target", "status"})
	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of contract gateway operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "target", "status"})
)

// RPCClient tracks metrics for calls to the contract gateway.
type RPCClient struct {
	target string
}

// NewRPCClient constructs a metrics collector for gateway calls; target tells read and write traffic apart.
func NewRPCClient(target string) *RPCClient {
	return &RPCClient{target: orUnknown(target)}
}

// Observe records a single call outcome and duration.
func (m RPCClient) Observe(operation string, err error, started time.Time) {
	s := status(err)
	rpcRequestsTotal.WithLabelValues(operation, m.target, s).Inc()
	rpcRequestDuration.WithLabelValues(operation, m.target, s).Observe(time.Since(started).Seconds())
}
