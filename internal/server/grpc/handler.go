package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, err := stringField(req, "email")
	if err != nil {
		return nil, err
	}
	password, err := stringField(req, "password")
	if err != nil {
		return nil, err
	}
	name, err := stringField(req, "name")
	if err != nil {
		return nil, err
	}
	roles, err := stringListField(req, "roles")
	if err != nil {
		return nil, err
	}

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	session, err := s.users.Register(ctx, users.RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
		Roles:    roles,
	})
	if err != nil {
		return nil, statusFromError(err)
	}

	return sessionResponse(session)
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, err := stringField(req, "email")
	if err != nil {
		return nil, err
	}
	password, err := stringField(req, "password")
	if err != nil {
		return nil, err
	}

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, status.Error(codes.InvalidArgument, "password is required")
	}

	session, err := s.users.Login(ctx, email, password)
	if err != nil {
		return nil, statusFromError(err)
	}

	return sessionResponse(session)
}

func (s *GRPCServer) RenewToken(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing identity")
	}

	session, err := s.users.RenewToken(ctx, userID)
	if err != nil {
		return nil, statusFromError(err)
	}

	return sessionResponse(session)
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, statusFromError(err)
	}
	return usersResponse(list)
}

func (s *GRPCServer) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "id")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, statusFromError(err)
	}
	return userResponse(user)
}

func (s *GRPCServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}
