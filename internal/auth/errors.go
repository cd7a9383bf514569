package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnknownPrincipal indicates the live user record behind the
	// claims no longer exists.
	ErrUnknownPrincipal = errors.New("unknown principal")

	// ErrAccountLocked indicates the live user record is locked.
	ErrAccountLocked = errors.New("account locked")

	// ErrTenantBlocked indicates the principal's company is blocked.
	ErrTenantBlocked = errors.New("tenant blocked")
)
