// Package transport exposes gRPC/HTTP handlers.
package transport

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// healthPollInterval is how often Watch re-checks the serving state.
const healthPollInterval = time.Second

// ServingState reports whether the reconciler accepts connections.
type ServingState interface {
	Serving() bool
}

// HealthHandler implements grpc.health.v1.Health on top of the reconciler state.
// Only the overall service ("") is known.
type HealthHandler struct {
	healthpb.UnimplementedHealthServer
	reconciler ServingState
}

// NewHealthHandler returns a HealthHandler instance.
func NewHealthHandler(reconciler ServingState) *HealthHandler {
	return &HealthHandler{reconciler: reconciler}
}

// Check reports server health.
func (h *HealthHandler) Check(_ context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if req.GetService() != "" {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	return &healthpb.HealthCheckResponse{Status: h.status()}, nil
}

// Watch streams the serving status whenever it changes.
func (h *HealthHandler) Watch(req *healthpb.HealthCheckRequest, stream healthpb.Health_WatchServer) error {
	if req.GetService() != "" {
		return stream.Send(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVICE_UNKNOWN})
	}

	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		if current := h.status(); current != last {
			if err := stream.Send(&healthpb.HealthCheckResponse{Status: current}); err != nil {
				return err
			}
			last = current
		}
		select {
		case <-stream.Context().Done():
			return status.FromContextError(stream.Context().Err()).Err()
		case <-ticker.C:
		}
	}
}

func (h *HealthHandler) status() healthpb.HealthCheckResponse_ServingStatus {
	if h.reconciler.Serving() {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
