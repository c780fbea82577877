package grpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName: имя, под которым сервис заказов отмечается в health.
const ServiceName = "fantasyluxe.orders"

// HealthServer отдаёт grpc.health.v1 для оркестратора: SERVING, пока
// HTTP-сервер принимает запросы, NOT_SERVING во время остановки.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	log    *zap.Logger
}

func NewHealthServer(log *zap.Logger) *HealthServer {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(recoveryInterceptor(log)))

	h := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, h)
	reflection.Register(srv)

	hs := &HealthServer{srv: srv, health: h, log: log}
	hs.SetServing(false)
	return hs
}

func (s *HealthServer) SetServing(ok bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Serve блокирует до Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("Starting gRPC health server", zap.String("addr", lis.Addr().String()))
	return s.srv.Serve(lis)
}

func (s *HealthServer) Stop(timeout time.Duration) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.srv.Stop()
	}
	s.log.Info("gRPC health server stopped")
}

func recoveryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in grpc handler", zap.String("method", info.FullMethod), zap.Any("panic", r))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
