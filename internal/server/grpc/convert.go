package grpc

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func stringField(in *structpb.Struct, name string) (string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	return s.StringValue, nil
}

func stringListField(in *structpb.Struct, name string) ([]string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list of strings", name)
	}

	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be a list of strings", name)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func userValue(u users.PublicUser) map[string]any {
	roles := make([]any, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r)
	}
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"name":      u.Name,
		"isActive":  u.IsActive,
		"roles":     roles,
		"createdAt": u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func sessionResponse(s *users.Session) (*structpb.Struct, error) {
	return newResponse(map[string]any{
		"user":  userValue(s.User),
		"token": s.Token,
	})
}

func userResponse(u *users.PublicUser) (*structpb.Struct, error) {
	return newResponse(map[string]any{"user": userValue(*u)})
}

func usersResponse(list []users.PublicUser) (*structpb.Struct, error) {
	items := make([]any, 0, len(list))
	for _, u := range list {
		items = append(items, userValue(u))
	}
	return newResponse(map[string]any{"users": items})
}

func newResponse(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
