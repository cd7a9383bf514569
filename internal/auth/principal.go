package auth

import "runright.io/internal/cms"

// Principal is the resolved identity and authorization attributes for the
// current call. It is a read-only snapshot computed per call; it must not
// be cached across calls.
type Principal struct {
	UserID        string
	Email         string
	Name          string
	Role          int
	CompanyID     string
	BranchID      string
	Type          string
	LicenceExpiry int64
}

// IsAdmin reports whether the principal holds the cross-tenant top tier.
func (p Principal) IsAdmin() bool { return p.Role == cms.RoleAdmin }

// HasRole reports whether the principal's role is one of the given roles.
func (p Principal) HasRole(roles ...int) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// PrincipalFromUser builds a snapshot from a live user record. The company
// contributes the licence fields; it may be nil for tiers that skip the
// tenant health check, in which case the fallback values are used.
func PrincipalFromUser(u *cms.User, company *cms.Company, fallbackType string, fallbackExpiry int64) Principal {
	p := Principal{
		UserID:        u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		CompanyID:     u.CompanyID,
		BranchID:      u.BranchID,
		Type:          fallbackType,
		LicenceExpiry: fallbackExpiry,
	}
	if company != nil {
		p.Type = company.Type
		p.LicenceExpiry = company.LicenceExpiry
	}
	return p
}
