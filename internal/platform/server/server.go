package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Server は HTTP API と gRPC ヘルスチェックのライフサイクルを管理します。
type Server struct {
	httpAddr   string
	grpcAddr   string
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// New は HTTP ハンドラーと gRPC ヘルスサービスを待ち受けるサーバーを構築します。
// grpcAddr が空の場合 gRPC は起動しません。
func New(httpAddr, grpcAddr string, handler http.Handler, opts ...grpc.ServerOption) *Server {
	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{
		httpAddr: httpAddr,
		grpcAddr: grpcAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
		grpcServer: srv,
		health:     hs,
		logger:     logger.Get(),
	}
}

// SetServing はヘルスチェックの応答状態を切り替えます。
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Run はサーバーを起動し、コンテキストがキャンセルされると停止します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}

	var grpcLis net.Listener
	if s.grpcAddr != "" {
		grpcLis, err = net.Listen("tcp", s.grpcAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.grpcAddr, err)
		}
	}

	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("http server listening", "addr", httpLis.Addr().String())
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP: %w", err)
		}
	}()

	if grpcLis != nil {
		go func() {
			s.logger.Info("grpc server listening", "addr", grpcLis.Addr().String())
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("serve gRPC: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	s.shutdown(shutdownCtx)

	return runErr
}

func (s *Server) shutdown(ctx context.Context) {
	s.health.Shutdown()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("http server shutdown failed", "error", err)
	}
	s.grpcServer.GracefulStop()
	s.logger.Info("server stopped")
}
