// Package server реализует gRPC-сервер проверки состояния трекера задач.
//
// HealthServer отдаёт стандартный grpc.health.v1. Статус SERVING выставляется,
// пока проба хранилища проходит, и сбрасывается в NOT_SERVING при сбое
// или остановке.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
)

// ServiceName имя сервиса в ответах health-check.
const ServiceName = "tasktracker.TaskTracker"

// Probe проверяет зависимость, например хранилище.
type Probe func(ctx context.Context) error

// HealthServer обслуживает grpc.health.v1.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	probe      Probe
	interval   time.Duration
	log        *slog.Logger
}

// NewHealthServer создает сервер на уже открытом listener. probe может быть nil.
func NewHealthServer(lis net.Listener, probe Probe, interval time.Duration, log *slog.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthServer{
		grpcServer: grpcServer,
		health:     hs,
		listener:   lis,
		probe:      probe,
		interval:   interval,
		log:        log,
	}
}

// Listen открывает TCP listener по адресу и создает сервер.
func Listen(address string, probe Probe, interval time.Duration, log *slog.Logger) (*HealthServer, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return NewHealthServer(lis, probe, interval, log), nil
}

// Addr возвращает адрес listener.
func (s *HealthServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Run обслуживает запросы до отмены ctx.
func (s *HealthServer) Run(ctx context.Context) error {
	s.check(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server listening on", slog.String("address", s.listener.Addr().String()))
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, s.interval)
		err := s.probe(probeCtx)
		cancel()
		if err != nil {
			s.log.Warn("health probe failed", sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
