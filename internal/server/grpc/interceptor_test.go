package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// stubUsers accepts exactly one token.
type stubUsers struct {
	UserService
	token string
}

func (s stubUsers) Authenticate(_ context.Context, token string) (string, error) {
	if token != s.token {
		return "", users.ErrUnauthorized
	}
	return "user-1", nil
}

func newInterceptorServer() *GRPCServer {
	return &GRPCServer{logger: logging.Nop(), users: stubUsers{token: "good"}}
}

func TestInterceptor_PublicMethodNeedsNoToken(t *testing.T) {
	s := newInterceptorServer()

	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Login_FullMethodName}
	called := false
	h := func(ctx context.Context, req any) (any, error) {
		called = true
		_, ok := UserIDFromContext(ctx)
		assert.False(t, ok)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newInterceptorServer()

	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_ListUsers_FullMethodName}
	h := func(context.Context, any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_TokenSources(t *testing.T) {
	tests := []struct {
		name string
		md   metadata.MD
		ok   bool
	}{
		{name: "bearer", md: metadata.Pairs(common.AuthorizationHeaderName, "Bearer good"), ok: true},
		{name: "lowercase scheme", md: metadata.Pairs(common.AuthorizationHeaderName, "bearer good"), ok: true},
		{name: "access_token", md: metadata.Pairs(common.AccessTokenHeaderName, "good"), ok: true},
		{name: "wrong token", md: metadata.Pairs(common.AuthorizationHeaderName, "Bearer bad"), ok: false},
		{name: "basic scheme", md: metadata.Pairs(common.AuthorizationHeaderName, "Basic good"), ok: false},
	}

	s := newInterceptorServer()
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_GetUser_FullMethodName}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			h := func(ctx context.Context, req any) (any, error) {
				gotID, _ = UserIDFromContext(ctx)
				return nil, nil
			}

			ctx := metadata.NewIncomingContext(context.Background(), tt.md)
			_, err := s.accessTokenInterceptor(ctx, nil, info, h)
			if !tt.ok {
				assert.Equal(t, codes.Unauthenticated, status.Code(err))
				assert.Empty(t, gotID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", gotID)
		})
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newInterceptorServer()
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Ping_FullMethodName}
	wantErr := errors.New("boom")

	_, err := s.loggingInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "pong", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp)
}
