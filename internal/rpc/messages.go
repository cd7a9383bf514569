package rpc

import (
	"runright.io/internal/cms"
	"runright.io/internal/query"
)

// Result is the shared scalar reply for mutations and counts.
type Result struct {
	IntResult    int64  `json:"int_result,omitempty"`
	StringResult string `json:"string_result,omitempty"`
}

// LoginRequest carries the credential pair for Users/Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the login reply: the account record plus a signed token and
// the tenant licence snapshot baked into it.
type Session struct {
	cms.User
	Token         string `json:"token"`
	Type          string `json:"type,omitempty"`
	LicenceExpiry int64  `json:"licence_expiry,omitempty"`
}

// ResetPasswordRequest redeems a password reset link.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SetUserRequest creates a user when UserID is blank, otherwise edits one.
type SetUserRequest struct {
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      int    `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	BranchID  string `json:"branch_id,omitempty"`
	Password  string `json:"password,omitempty"`
	Locked    bool   `json:"locked,omitempty"`
	Disabled  bool   `json:"disabled,omitempty"`
}

type RemoveUserRequest struct {
	UserID string `json:"user_id"`
}

type UserList struct {
	Users []*cms.User `json:"users"`
}

type CompanyList struct {
	Companies []*cms.Company `json:"companies"`
}

// AddBranchRequest opens a new branch under a company. The branch id is
// allocated server side from the branch counter.
type AddBranchRequest struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
}

// SetLicenceRequest updates a company's licence and records the change in
// the company's licence history.
type SetLicenceRequest struct {
	CompanyID     string `json:"company_id"`
	Type          string `json:"type"`
	PaymentModel  string `json:"payment_model,omitempty"`
	LicenceExpiry int64  `json:"licence_expiry"`
	MonthCount    int    `json:"month_count,omitempty"`
}

type RemoveCompanyRequest struct {
	CompanyID string `json:"company_id"`
}

type LicenceEventList struct {
	Events []*cms.LicenceEvent `json:"events"`
}

type CustomerList struct {
	Customers []*cms.Customer `json:"customers"`
}

type RemoveCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

type ShoeList struct {
	Shoes []*cms.Shoe `json:"shoes"`
}

type RemoveShoeRequest struct {
	ShoeID string `json:"shoe_id"`
}

type TrialList struct {
	Trials []*cms.ShoeTrial `json:"trials"`
}

type RemoveTrialRequest struct {
	TrialID string `json:"trial_id"`
}

// GetDataRequest is the empty probe request for Reports/GetData.
type GetDataRequest struct{}

// DataResponse reports service liveness to unauthenticated monitors.
type DataResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// SaleRecordsRequest wraps a list query for sold-trial reporting.
type SaleRecordsRequest struct {
	Query query.Descriptor `json:"query"`
}
