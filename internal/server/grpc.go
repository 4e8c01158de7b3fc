// Package server builds the bot's internal gRPC server (health checks only).
package server

import (
	"errors"
	"fmt"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthhandler "jobseeker-bot/internal/health/handler"
	"jobseeker-bot/internal/server/interceptors"
)

// Deps holds the server's dependencies.
type Deps struct {
	// Pingers are checked by the health service, keyed by service name ("postgres", "redis").
	Pingers map[string]healthhandler.Pinger
	Logger  *zap.Logger
}

// New returns a gRPC server instrumented with otelgrpc and request logging.
func New(logger *zap.Logger) *grpc.Server {
	return grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors.LoggingUnary(logger, nil)),
	)
}

// RegisterServices registers the services with the given server.
//
//   - grpc.health.v1.Health → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.Pingers, deps.Logger))
}

// Serve listens on addr and serves in the background. The returned func stops the server gracefully.
func Serve(addr string, deps Deps) (func(), error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	s := New(logger)
	RegisterServices(s, deps)
	go func() {
		logger.Info("grpc: server listening", zap.String("addr", lis.Addr().String()))
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc: serve", zap.Error(err))
		}
	}()
	return s.GracefulStop, nil
}
