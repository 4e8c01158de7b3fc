// Package handler serves the standard gRPC health protocol for the bot's dependencies.
package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable. *sql.DB and the
// Redis session store satisfy it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server implements grpc.health.v1.Health. The overall service ("") is SERVING only
// when every registered pinger answers; each pinger is also checkable by name.
type Server struct {
	healthpb.UnimplementedHealthServer
	pingers map[string]Pinger
	logger  *zap.Logger
}

// NewServer returns a health server over pingers keyed by service name. Nil pingers are skipped.
func NewServer(pingers map[string]Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := make(map[string]Pinger, len(pingers))
	for name, p := range pingers {
		if p != nil {
			ps[name] = p
		}
	}
	return &Server{pingers: ps, logger: logger}
}

// Check pings the requested dependency, or all of them for the empty service name.
// Ping failures are reported as NOT_SERVING, not as gRPC errors.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	name := req.GetService()
	if name == "" {
		for dep, p := range s.pingers {
			if !s.ping(ctx, dep, p) {
				return notServing(), nil
			}
		}
		return serving(), nil
	}
	p, ok := s.pingers[name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}
	if !s.ping(ctx, name, p) {
		return notServing(), nil
	}
	return serving(), nil
}

func (s *Server) ping(ctx context.Context, name string, p Pinger) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.PingContext(ctx); err != nil {
		s.logger.Warn("health: dependency not reachable", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}

func serving() *healthpb.HealthCheckResponse {
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}
}

func notServing() *healthpb.HealthCheckResponse {
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}
}
