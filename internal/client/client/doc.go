// Package client is the gRPC client for the gophauth AuthService.
//
// GRPCClient keeps the session token returned by Register, Login and
// RenewToken and attaches it as "authorization: Bearer <token>" to every
// call. gRPC status codes are mapped to the sentinel errors below so that
// callers can match them with errors.Is:
//
//   - ErrUnauthorized: Unauthenticated or PermissionDenied
//   - ErrAlreadyExists: AlreadyExists
//   - ErrNotFound: NotFound
//   - ErrInvalidArgument: InvalidArgument
//   - ErrUnavailable: Unavailable or DeadlineExceeded
//
// The server's status message is kept in the wrapped error.
package client
