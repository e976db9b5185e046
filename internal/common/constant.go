package common

// AccessTokenHeaderName is the legacy gRPC metadata key carrying a raw
// session token.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName carries "Bearer <token>" on authenticated calls.
const AuthorizationHeaderName = "authorization"

// BearerPrefix is the scheme prefix of the authorization header value.
const BearerPrefix = "Bearer "
