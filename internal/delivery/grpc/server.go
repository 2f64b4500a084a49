package grpc

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ServiceKeyHeader carries the service role key on every CartService call.
const ServiceKeyHeader = "x-service-key"

const healthPrefix = "/grpc.health.v1.Health/"

// NewServer builds a gRPC server exposing CartService behind the service key
// check, plus the standard health service.
func NewServer(handler CartServiceServer, serviceKey string, logger *logrus.Logger) *grpclib.Server {
	srv := grpclib.NewServer(grpclib.ChainUnaryInterceptor(
		LoggingInterceptor(logger),
		ServiceKeyInterceptor(serviceKey, logger),
	))
	srv.RegisterService(&CartServiceDesc, handler)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// ServiceKeyInterceptor rejects calls whose x-service-key metadata does not
// match key. An empty key rejects every call. Health checks pass through.
func ServiceKeyInterceptor(key string, logger *logrus.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get(ServiceKeyHeader)
		if len(values) == 0 {
			logger.Warnf("gRPC: %s called without service key", info.FullMethod)
			return nil, status.Error(codes.Unauthenticated, "service key required")
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(values[0]), []byte(key)) != 1 {
			logger.Warnf("gRPC: %s called with invalid service key", info.FullMethod)
			return nil, status.Error(codes.PermissionDenied, "invalid service key")
		}
		return handler(ctx, req)
	}
}

func LoggingInterceptor(logger *logrus.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := logger.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"code":       status.Code(err).String(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.Warn("gRPC call failed")
		} else {
			entry.Debug("gRPC call completed")
		}
		return resp, err
	}
}
