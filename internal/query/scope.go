package query

import (
	"errors"
	"strings"

	"runright.io/internal/auth"
	"runright.io/internal/cms"
)

// ErrInvalidCompanyID indicates a tenant identifier that cannot be used to
// build a scope constraint.
var ErrInvalidCompanyID = errors.New("query: invalid company id")

// ApplyCompanyScope injects the mandatory tenant constraint for
// non-privileged principals. Admin principals see all tenants.
//
// Every list and count path must route through this builder (or its
// branch-scoped variant) before touching the store; it is the tenant
// isolation boundary for the whole system.
func ApplyCompanyScope(f *cms.Filter, p auth.Principal) *cms.Filter {
	if p.IsAdmin() {
		return f
	}
	return f.Where("company_id", p.CompanyID)
}

// ApplyBranchScope is the stricter variant: on top of the company
// constraint it pins the principal to its own branch when its role is one
// of the handler-declared branch-local tiers.
func ApplyBranchScope(f *cms.Filter, p auth.Principal, branchTiers ...int) *cms.Filter {
	ApplyCompanyScope(f, p)
	if p.HasRole(branchTiers...) {
		f.Where("branch_id", p.BranchID)
	}
	return f
}

// RestrictToCompanyID is the companion check for operations that address a
// single tenant directly. For non-privileged principals the filter is
// pinned to the principal's own company regardless of what the request
// named; an unusable own-company identifier is an input error.
func RestrictToCompanyID(f *cms.Filter, p auth.Principal) error {
	if p.IsAdmin() {
		return nil
	}
	if strings.TrimSpace(p.CompanyID) == "" {
		return ErrInvalidCompanyID
	}
	f.Where("company_id", p.CompanyID)
	return nil
}

// SameTenant reports whether the principal may act on the given company:
// either it is privileged enough to cross tenants or the company is its own.
func SameTenant(p auth.Principal, companyID string) bool {
	if p.HasRole(cms.RoleAdmin, cms.RoleDistributor) {
		return true
	}
	return p.CompanyID == companyID
}
