package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for the server at endpointURL. No
// connection is made until the first call.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// remember stores the token carried by a session response.
func (s *GRPCClient) remember(resp *structpb.Struct) {
	if token := resp.GetFields()["token"].GetStringValue(); token != "" {
		s.SetToken(token)
	}
}

func (s *GRPCClient) call(
	ctx context.Context,
	fn func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error),
	fields map[string]any,
) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := fn(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Register(ctx context.Context, email, password, name string, roles []string) (*structpb.Struct, error) {
	fields := map[string]any{"email": email, "password": password, "name": name}
	if len(roles) > 0 {
		list := make([]any, 0, len(roles))
		for _, r := range roles {
			list = append(list, r)
		}
		fields["roles"] = list
	}

	resp, err := s.call(ctx, s.client.Register, fields)
	if err != nil {
		return nil, err
	}
	s.remember(resp)
	return resp, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*structpb.Struct, error) {
	resp, err := s.call(ctx, s.client.Login, map[string]any{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	s.remember(resp)
	return resp, nil
}

func (s *GRPCClient) RenewToken(ctx context.Context) (*structpb.Struct, error) {
	resp, err := s.call(ctx, s.client.RenewToken, nil)
	if err != nil {
		return nil, err
	}
	s.remember(resp)
	return resp, nil
}

func (s *GRPCClient) ListUsers(ctx context.Context) (*structpb.Struct, error) {
	return s.call(ctx, s.client.ListUsers, nil)
}

func (s *GRPCClient) GetUser(ctx context.Context, id string) (*structpb.Struct, error) {
	return s.call(ctx, s.client.GetUser, map[string]any{"id": id})
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.call(ctx, s.client.Ping, nil)
	if err != nil {
		return err
	}
	if resp.GetFields()["status"].GetStringValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		sentinel = ErrUnauthorized
	case codes.AlreadyExists:
		sentinel = ErrAlreadyExists
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.InvalidArgument:
		sentinel = ErrInvalidArgument
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
