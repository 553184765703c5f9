// Package grpc exposes the health log remote store over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/healthlog/internal/logging"
	pb "github.com/dmitrijs2005/healthlog/internal/proto"
	"github.com/dmitrijs2005/healthlog/internal/server/auth"
	"github.com/dmitrijs2005/healthlog/internal/server/models"
	"github.com/dmitrijs2005/healthlog/internal/server/services"
	"google.golang.org/grpc"
)

type userService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type healthLogService interface {
	Upload(ctx context.Context, userID, deviceID, payload string) (*models.HealthLog, error)
	Probe(ctx context.Context) (int64, error)
}

type GRPCServer struct {
	pb.UnimplementedHealthLogSyncServer
	address string
	users   userService
	logs    healthLogService
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, us userService, ls healthLogService) *GRPCServer {
	return &GRPCServer{
		address: address,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		logs:    ls,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully once ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterHealthLogSyncServer(srv, s)

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
