package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/storefront/internal/docstore"
)

const serviceName = "storefront"

// startHealthServer serves grpc.health.v1.Health on addr. The reported
// status follows a periodic ping of the store until ctx is done.
func startHealthServer(ctx context.Context, addr string, store docstore.Store, log *zap.Logger) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	probeStore(ctx, hs, store, log)
	go watchStore(ctx, hs, store, 15*time.Second, log)
	go func() {
		log.Info("grpc health listening", zap.String("addr", addr))
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()
	return srv, nil
}

func watchStore(ctx context.Context, hs *health.Server, store docstore.Store, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			probeStore(ctx, hs, store, log)
		}
	}
}

func probeStore(ctx context.Context, hs *health.Server, store docstore.Store, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := store.Ping(ctx); err != nil {
		log.Warn("store ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(serviceName, status)
}
