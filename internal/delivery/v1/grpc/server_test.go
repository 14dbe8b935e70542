package grpc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func status(s *GRPCServer) healthpb.HealthCheckResponse_ServingStatus {
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestWatchStore(t *testing.T) {
	s := NewGRPCServer(&cfg.GRPCConfig{Port: "0", NetworkMode: "tcp"}, logger.NewNop())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(s))

	var down atomic.Bool
	probe := func(context.Context) error {
		if down.Load() {
			return errors.New("connection refused")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.WatchStore(ctx, probe, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return status(s) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	down.Store(true)
	assert.Eventually(t, func() bool {
		return status(s) == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
