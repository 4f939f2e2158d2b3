package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Server exposes the gRPC health protocol so orchestrators can probe the
// service over the same port family as the other mesh services.
type Server struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
}

func NewServer(logger *slog.Logger, serviceName string) *Server {
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(server, healthSrv)
	s := &Server{server: server, health: healthSrv, serviceName: serviceName}
	s.SetServing(true)
	return s
}

// SetServing flips both the overall and the named service status.
func (s *Server) SetServing(serving bool) {
	state := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		state = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", state)
	s.health.SetServingStatus(s.serviceName, state)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelDebug
		outcome := "success"
		if err != nil {
			level = slog.LevelWarn
			outcome = "failure"
		}
		logger.Log(ctx, level, "grpc request completed",
			"module", "grpc",
			"layer", "adapter",
			"operation", info.FullMethod,
			"outcome", outcome,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
