package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	pb "github.com/dmitrijs2005/gophaccount/internal/proto"
	"github.com/dmitrijs2005/gophaccount/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	_ "github.com/dmitrijs2005/gophaccount/internal/codec"
)

// AccountAPI is the business surface the RPC handlers delegate to.
type AccountAPI interface {
	Authenticate(ctx context.Context, username, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	CheckPermission(ctx context.Context, accessToken, permission string) (string, error)
	Logout(ctx context.Context, accessToken string) error
}

type GRPCServer struct {
	pb.UnimplementedAccountServiceServer
	address        string
	accounts       AccountAPI
	logger         logging.Logger
	requestTimeout time.Duration
	health         *health.Server
}

func NewGRPCServer(address string, l logging.Logger, accounts AccountAPI, requestTimeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address:        address,
		accounts:       accounts,
		logger:         l.With("module", "grpc_server"),
		requestTimeout: requestTimeout,
		health:         health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.timeoutInterceptor),
	)

	pb.RegisterAccountServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then reports
// NOT_SERVING and stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
