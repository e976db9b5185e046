package grpc

import (
	"context"
	"testing"

	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func empty() *structpb.Struct { return &structpb.Struct{} }

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func newClient(t *testing.T) pb.AuthServiceClient {
	t.Helper()
	srv, err := NewGRPCServer("bufnet", nil, newUserService(t))
	require.NoError(t, err)
	return startBufconn(t, srv)
}

func register(t *testing.T, c pb.AuthServiceClient, email, password, name string) *structpb.Struct {
	t.Helper()
	resp, err := c.Register(context.Background(), mustStruct(t, map[string]any{
		"email":    email,
		"password": password,
		"name":     name,
	}))
	require.NoError(t, err)
	return resp
}

func assertPublicUser(t *testing.T, u *structpb.Struct) {
	t.Helper()
	require.NotNil(t, u)
	fields := u.GetFields()
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "passwordHash")
	assert.NotEmpty(t, fields["id"].GetStringValue())
	assert.NotEmpty(t, fields["createdAt"].GetStringValue())
}

func TestRegisterAndLogin(t *testing.T) {
	c := newClient(t)

	reg := register(t, c, "Ann@Example.com", "secret1", "Ann")
	user := reg.GetFields()["user"].GetStructValue()
	assertPublicUser(t, user)
	assert.Equal(t, "ann@example.com", user.GetFields()["email"].GetStringValue())
	assert.Equal(t, "Ann", user.GetFields()["name"].GetStringValue())
	assert.True(t, user.GetFields()["isActive"].GetBoolValue())
	require.Len(t, user.GetFields()["roles"].GetListValue().GetValues(), 1)
	assert.Equal(t, "user", user.GetFields()["roles"].GetListValue().GetValues()[0].GetStringValue())
	assert.NotEmpty(t, reg.GetFields()["token"].GetStringValue())

	login, err := c.Login(context.Background(), mustStruct(t, map[string]any{
		"email":    "ann@example.com",
		"password": "secret1",
	}))
	require.NoError(t, err)
	assertPublicUser(t, login.GetFields()["user"].GetStructValue())
	assert.NotEmpty(t, login.GetFields()["token"].GetStringValue())
}

func TestRegister_Duplicate(t *testing.T) {
	c := newClient(t)
	register(t, c, "ann@example.com", "secret1", "Ann")

	_, err := c.Register(context.Background(), mustStruct(t, map[string]any{
		"email":    "ANN@example.com",
		"password": "secret2",
		"name":     "Other",
	}))
	require.Error(t, err)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "already exists")
}

func TestRegister_Validation(t *testing.T) {
	c := newClient(t)

	tests := []struct {
		name string
		req  map[string]any
	}{
		{name: "missing email", req: map[string]any{"password": "secret1", "name": "A"}},
		{name: "malformed email", req: map[string]any{"email": "nope", "password": "secret1", "name": "A"}},
		{name: "short password", req: map[string]any{"email": "a@b.io", "password": "12345", "name": "A"}},
		{name: "missing name", req: map[string]any{"email": "a@b.io", "password": "secret1", "name": "  "}},
		{name: "email not a string", req: map[string]any{"email": 42, "password": "secret1", "name": "A"}},
		{name: "roles not strings", req: map[string]any{"email": "a@b.io", "password": "secret1", "name": "A", "roles": []any{1.0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Register(context.Background(), mustStruct(t, tt.req))
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestRegister_WithRoles(t *testing.T) {
	c := newClient(t)

	resp, err := c.Register(context.Background(), mustStruct(t, map[string]any{
		"email":    "root@example.com",
		"password": "secret1",
		"name":     "Root",
		"roles":    []any{"admin", "user"},
	}))
	require.NoError(t, err)

	roles := resp.GetFields()["user"].GetStructValue().GetFields()["roles"].GetListValue().GetValues()
	require.Len(t, roles, 2)
	assert.Equal(t, "admin", roles[0].GetStringValue())
}

func TestLogin_Failures(t *testing.T) {
	c := newClient(t)
	register(t, c, "ann@example.com", "secret1", "Ann")

	_, wrongPassword := c.Login(context.Background(), mustStruct(t, map[string]any{
		"email": "ann@example.com", "password": "wrong-pass",
	}))
	_, unknownEmail := c.Login(context.Background(), mustStruct(t, map[string]any{
		"email": "bob@example.com", "password": "secret1",
	}))

	for _, err := range []error{wrongPassword, unknownEmail} {
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	}
	assert.Equal(t, status.Convert(wrongPassword).Message(), status.Convert(unknownEmail).Message())
}

func TestProtectedMethods(t *testing.T) {
	c := newClient(t)
	reg := register(t, c, "ann@example.com", "secret1", "Ann")
	token := reg.GetFields()["token"].GetStringValue()
	id := reg.GetFields()["user"].GetStructValue().GetFields()["id"].GetStringValue()
	register(t, c, "bob@example.com", "secret2", "Bob")

	t.Run("no token", func(t *testing.T) {
		_, err := c.ListUsers(context.Background(), empty())
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("bad token", func(t *testing.T) {
		_, err := c.ListUsers(withBearer(context.Background(), "garbage"), empty())
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("list", func(t *testing.T) {
		resp, err := c.ListUsers(withBearer(context.Background(), token), empty())
		require.NoError(t, err)
		list := resp.GetFields()["users"].GetListValue().GetValues()
		require.Len(t, list, 2)
		for _, u := range list {
			assertPublicUser(t, u.GetStructValue())
		}
	})

	t.Run("get", func(t *testing.T) {
		resp, err := c.GetUser(withBearer(context.Background(), token), mustStruct(t, map[string]any{"id": id}))
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", resp.GetFields()["user"].GetStructValue().GetFields()["email"].GetStringValue())
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := c.GetUser(withBearer(context.Background(), token), mustStruct(t, map[string]any{"id": "missing"}))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("get without id", func(t *testing.T) {
		_, err := c.GetUser(withBearer(context.Background(), token), empty())
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("renew", func(t *testing.T) {
		resp, err := c.RenewToken(withBearer(context.Background(), token), empty())
		require.NoError(t, err)
		renewed := resp.GetFields()["token"].GetStringValue()
		assert.NotEmpty(t, renewed)
		assert.NotEqual(t, token, renewed)
		assert.Equal(t, id, resp.GetFields()["user"].GetStructValue().GetFields()["id"].GetStringValue())
	})
}
