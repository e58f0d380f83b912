package main

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/storefront/internal/docstore"
)

type downStore struct{ docstore.Store }

func (downStore) Ping(context.Context) error { return errors.New("no route to host") }

func checkStatus(t *testing.T, hs *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestProbeStore(t *testing.T) {
	hs := health.NewServer()

	probeStore(context.Background(), hs, docstore.NewMemory(), zap.NewNop())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, hs, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, hs, serviceName))

	probeStore(context.Background(), hs, downStore{}, zap.NewNop())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, hs, serviceName))
}

func TestHealthz_StoreDown(t *testing.T) {
	engine := newRouter(deps{log: zap.NewNop(), store: downStore{}})
	w := do(engine, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "no route to host")
}
