package auth

import (
	"context"
	"errors"
	"fmt"

	"runright.io/internal/cms"
)

// Resolver turns decoded claims back into an authoritative principal by
// re-reading the live user and company records. Claims are never trusted
// for lock/block state; revoking access takes effect on the next call even
// though issued tokens are not re-signed.
type Resolver struct {
	store cms.Store
}

// NewResolver builds a resolver over the given store.
func NewResolver(store cms.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads the live user record for the claims and evaluates account
// and tenant health. The returned principal is built from the live record,
// not from the claims, so role or tenant changes apply immediately.
func (r *Resolver) Resolve(ctx context.Context, claims *Claims) (Principal, error) {
	user, err := r.store.Users().FindOne(ctx, (&cms.Filter{}).Where("email", claims.Email))
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return Principal{}, ErrUnknownPrincipal
		}
		return Principal{}, fmt.Errorf("resolve principal: %w", err)
	}
	if user.Locked {
		return Principal{}, ErrAccountLocked
	}

	var company *cms.Company
	if user.Role < cms.CompanyCheckBelow {
		company, err = r.store.Companies().FindOne(ctx, (&cms.Filter{}).Where("company_id", user.CompanyID))
		if err != nil {
			if errors.Is(err, cms.ErrNotFound) {
				return Principal{}, ErrUnknownPrincipal
			}
			return Principal{}, fmt.Errorf("resolve tenant: %w", err)
		}
		if company.Blocked {
			return Principal{}, ErrTenantBlocked
		}
	}

	return PrincipalFromUser(user, company, claims.Type, claims.LicenceExpiry), nil
}
