package grpc

import (
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindCodes = map[users.Kind]codes.Code{
	users.KindOK:                 codes.OK,
	users.KindDuplicateEmail:     codes.AlreadyExists,
	users.KindInvalidCredentials: codes.Unauthenticated,
	users.KindNotFound:           codes.NotFound,
	users.KindUnauthorized:       codes.Unauthenticated,
	users.KindInternal:           codes.Internal,
}

func codeForKind(k users.Kind) codes.Code {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return codes.Internal
}

// statusFromError converts a users.Service error into a gRPC status error.
// Internal failures never leak their cause to the caller.
func statusFromError(err error) error {
	if err == nil {
		return nil
	}

	kind := users.KindOf(err)
	msg := err.Error()
	if kind == users.KindInternal {
		msg = users.ErrInternal.Error()
	}
	return status.Error(codeForKind(kind), msg)
}
