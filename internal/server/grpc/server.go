package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"google.golang.org/grpc"
)

// UserService is the part of users.Service the transport depends on.
type UserService interface {
	Register(ctx context.Context, in users.RegisterInput) (*users.Session, error)
	Login(ctx context.Context, email, password string) (*users.Session, error)
	FindAll(ctx context.Context) ([]users.PublicUser, error)
	FindUserByID(ctx context.Context, id string) (*users.PublicUser, error)
	RenewToken(ctx context.Context, id string) (*users.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer
	address string
	users   UserService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService) (*GRPCServer, error) {
	if l == nil {
		l = logging.Nop()
	}
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
	}, nil
}

// newServer builds the grpc.Server with the service and its interceptors
// registered but not yet serving.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
