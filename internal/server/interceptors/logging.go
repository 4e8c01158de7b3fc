// Package interceptors holds gRPC server interceptors for the bot's internal endpoints.
package interceptors

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingUnary returns a unary server interceptor that logs each RPC's method, status and duration.
// Successful calls are logged at debug so frequent probes stay quiet; failures at warn.
// skipMethods is the set of full method names not to log at all.
func LoggingUnary(logger *zap.Logger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if code == codes.OK {
			logger.Debug("grpc: request", fields...)
		} else {
			logger.Warn("grpc: request failed", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
