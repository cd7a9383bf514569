package gate

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"runright.io/internal/auth"
)

const (
	permissionDeniedDetail = "You do not have permission to perform this action"
	authRequiredDetail     = "Authentication required"
)

// Authorize is the single comparison routine behind both the handler
// wrapper and the inline check. Keeping one routine prevents the two forms
// from drifting apart.
func Authorize(p auth.Principal, roles ...int) error {
	if p.HasRole(roles...) {
		return nil
	}
	return status.Error(codes.PermissionDenied, permissionDeniedDetail)
}

// Require extracts the principal from the call context and authorizes it
// against the given roles. Handlers call this before doing any work; the
// returned principal carries the caller's tenant attributes.
func Require(ctx context.Context, roles ...int) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.Principal{}, status.Error(codes.Unauthenticated, authRequiredDetail)
	}
	if err := Authorize(p, roles...); err != nil {
		return auth.Principal{}, err
	}
	return p, nil
}

// Principal returns the caller's principal without a role requirement, for
// handlers that gate on request content instead of a fixed role set.
func Principal(ctx context.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.Principal{}, status.Error(codes.Unauthenticated, authRequiredDetail)
	}
	return p, nil
}

// Guard wraps a handler function with a role requirement. The wrapped body
// never executes on a mismatch.
func Guard[Req any, Resp any](fn func(context.Context, Req) (Resp, error), roles ...int) func(context.Context, Req) (Resp, error) {
	return func(ctx context.Context, req Req) (Resp, error) {
		if _, err := Require(ctx, roles...); err != nil {
			var zero Resp
			return zero, err
		}
		return fn(ctx, req)
	}
}
