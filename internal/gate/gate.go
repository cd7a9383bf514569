// Package gate implements the per-call authorization envelope: request
// authentication, account and tenant health checks, the lower-trust
// transport role floor, and per-operation role requirements.
package gate

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"runright.io/internal/auth"
	"runright.io/internal/cms"
)

const (
	authorizationHeader = "authorization"

	// webMarkerHeader flags calls that arrived through the browser-facing
	// gateway. Only its presence matters; the value is never inspected.
	webMarkerHeader = "x-grpc-web"
)

// The user-facing detail strings below are part of the client contract and
// must be preserved verbatim.
const (
	detailNoHeader     = "No authorization header provided"
	detailMalformed    = "Authorization header is malformed"
	detailInvalidToken = "Authorization token is invalid/expired. Please reauthenticate"
	detailLocked       = "This account has been locked"
	detailBlocked      = "This account is blocked. Please contact your RUNRIGHT representative"
	detailWebFloor     = "Access method not permitted"
)

// ExemptMethods are dispatched without authentication and with no principal
// attached. They are exactly the operations a caller must reach before it
// can hold a token.
var ExemptMethods = map[string]struct{}{
	"/runright.v1.Users/Login":             {},
	"/runright.v1.Users/SendPasswordReset": {},
	"/runright.v1.Users/ResetPassword":     {},
}

// BypassMethods skip the gate wholesale. Each entry is a deliberate
// carve-out, not a default: GetData is the diagnostics probe used by
// deployment health checks.
var BypassMethods = map[string]struct{}{
	"/runright.v1.Reports/GetData": {},
}

// FromWeb reports whether the call arrived through the browser-facing
// gateway. Login consults this before a principal exists.
func FromWeb(ctx context.Context) bool {
	md, _ := metadata.FromIncomingContext(ctx)
	return len(md.Get(webMarkerHeader)) > 0
}

// Gate authenticates and resolves the caller once per request.
type Gate struct {
	resolver *auth.Resolver
}

// New builds a gate over the given principal resolver.
func New(resolver *auth.Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// UnaryInterceptor returns the interceptor enforcing the gate. The
// pipeline is linear and terminal: any failure aborts the call and the
// caller must re-authenticate from scratch.
func (g *Gate) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := BypassMethods[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		if _, ok := ExemptMethods[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		header := md.Get(authorizationHeader)
		if len(header) == 0 || strings.TrimSpace(header[0]) == "" {
			return nil, status.Error(codes.Unauthenticated, detailNoHeader)
		}
		parts := strings.SplitN(header[0], " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return nil, status.Error(codes.Unauthenticated, detailMalformed)
		}
		token := strings.TrimSpace(parts[1])

		claims, err := auth.ParseAndValidate(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, detailInvalidToken)
		}

		principal, err := g.resolver.Resolve(ctx, claims)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrAccountLocked):
				// A locked user is a permission matter; a blocked tenant is
				// an authentication matter. The asymmetry is intentional.
				return nil, status.Error(codes.PermissionDenied, detailLocked)
			case errors.Is(err, auth.ErrTenantBlocked):
				return nil, status.Error(codes.Unauthenticated, detailBlocked)
			default:
				return nil, status.Error(codes.Unauthenticated, detailInvalidToken)
			}
		}

		if len(md.Get(webMarkerHeader)) > 0 && principal.Role < cms.WebRoleFloor {
			return nil, status.Error(codes.Unauthenticated, detailWebFloor)
		}

		ctx = auth.ContextWithPrincipal(ctx, principal)
		ctx = auth.ContextWithToken(ctx, token)
		return handler(ctx, req)
	}
}
