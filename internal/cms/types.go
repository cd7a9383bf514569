package cms

// Role is an ordinal privilege level. Higher values carry more privilege;
// RoleAdmin is the single cross-tenant tier.
const (
	RoleDevice      = 1
	RoleTechnician  = 2
	RoleStore       = 3
	RoleManager     = 4
	RoleDistributor = 5
	RoleAdmin       = 6
)

// WebRoleFloor is the minimum role for calls arriving through the
// browser-facing gateway.
const WebRoleFloor = RoleStore

// CompanyCheckBelow marks the role threshold under which the caller's
// company health is re-verified on every request.
const CompanyCheckBelow = RoleDistributor

// Audit carries creation/update attribution shared by mutable records.
// Timestamps are epoch milliseconds.
type Audit struct {
	Created int64  `json:"created,omitempty"`
	Creator string `json:"creator,omitempty"`
	Updated int64  `json:"updated,omitempty"`
	Updater string `json:"updater,omitempty"`
}

// StampCreation records who created the record and when.
func (a *Audit) StampCreation(actor string) {
	a.Created = NowMillis()
	a.Creator = actor
}

// StampUpdate records who last modified the record and when.
func (a *Audit) StampUpdate(actor string) {
	a.Updated = NowMillis()
	a.Updater = actor
}

// Company is the unit of tenant isolation.
type Company struct {
	ID            string `json:"company_id"`
	Name          string `json:"name"`
	Blocked       bool   `json:"blocked"`
	LicenceExpiry int64  `json:"licence_expiry"`
	MonthCount    int32  `json:"month_count"`
	PaymentModel  string `json:"payment_model"`
	Type          string `json:"type"`
	Audit
}

// Branch belongs to exactly one company; BranchID is a zero-padded
// sequential string unique within the system.
type Branch struct {
	CompanyID string `json:"company_id"`
	BranchID  string `json:"branch_id"`
	Name      string `json:"name"`
	Audit
}

// User is an operator account bound to a company (and optionally a branch)
// unless it holds the admin tier.
type User struct {
	ID             string `json:"user_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           int    `json:"role"`
	CompanyID      string `json:"company_id"`
	BranchID       string `json:"branch_id"`
	PasswordHash   string `json:"-"`
	Locked         bool   `json:"locked"`
	Disabled       bool   `json:"disabled"`
	ResetToken     string `json:"-"`
	ResetGenerated int64  `json:"-"`
	Audit
}

// Customer is an end customer whose shoe fittings are recorded.
type Customer struct {
	ID          string `json:"customer_id"`
	CompanyID   string `json:"company_id"`
	BranchID    string `json:"branch_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Audit
}

// Shoe is a catalogue entry shared across tenants.
type Shoe struct {
	ID     string `json:"shoe_id"`
	EAN    string `json:"ean"`
	Brand  string `json:"brand"`
	Model  string `json:"model"`
	Season string `json:"season"`
	Gender string `json:"gender"`
	Audit
}

// ShoeTrial is one recorded fitting session for a customer.
type ShoeTrial struct {
	ID            string `json:"trial_id"`
	CustomerID    string `json:"customer_id"`
	CompanyID     string `json:"company_id"`
	BranchID      string `json:"branch_id"`
	ShoeName      string `json:"shoe_name"`
	ShoeBrand     string `json:"shoe_brand"`
	ShoeSize      string `json:"shoe_size"`
	ShoeSeason    string `json:"shoe_season"`
	RecordingDate int64  `json:"recording_date"`
	Sold          bool   `json:"sold"`
	Audit
}

// LicenceEvent is an append-only record of licence changes for a company.
type LicenceEvent struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id"`
	Type         string `json:"type"`
	MonthCount   int32  `json:"month_count"`
	PaymentModel string `json:"payment_model"`
	Created      int64  `json:"created"`
}

func (c *Company) fields() map[string]any {
	return map[string]any{
		"company_id":     c.ID,
		"name":           c.Name,
		"blocked":        c.Blocked,
		"licence_expiry": c.LicenceExpiry,
		"type":           c.Type,
		"created":        c.Created,
		"updated":        c.Updated,
	}
}

func (b *Branch) fields() map[string]any {
	return map[string]any{
		"company_id": b.CompanyID,
		"branch_id":  b.BranchID,
		"name":       b.Name,
		"created":    b.Created,
	}
}

func (u *User) fields() map[string]any {
	return map[string]any{
		"user_id":     u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"role":        int64(u.Role),
		"company_id":  u.CompanyID,
		"branch_id":   u.BranchID,
		"locked":      u.Locked,
		"disabled":    u.Disabled,
		"reset_token": u.ResetToken,
		"created":     u.Created,
	}
}

func (c *Customer) fields() map[string]any {
	return map[string]any{
		"customer_id":   c.ID,
		"company_id":    c.CompanyID,
		"branch_id":     c.BranchID,
		"first_name":    c.FirstName,
		"last_name":     c.LastName,
		"email":         c.Email,
		"gender":        c.Gender,
		"date_of_birth": c.DateOfBirth,
		"created":       c.Created,
		"updated":       c.Updated,
	}
}

func (s *Shoe) fields() map[string]any {
	return map[string]any{
		"shoe_id": s.ID,
		"ean":     s.EAN,
		"brand":   s.Brand,
		"model":   s.Model,
		"season":  s.Season,
		"gender":  s.Gender,
		"created": s.Created,
	}
}

func (t *ShoeTrial) fields() map[string]any {
	return map[string]any{
		"trial_id":       t.ID,
		"customer_id":    t.CustomerID,
		"company_id":     t.CompanyID,
		"branch_id":      t.BranchID,
		"shoe_name":      t.ShoeName,
		"shoe_brand":     t.ShoeBrand,
		"shoe_size":      t.ShoeSize,
		"shoe_season":    t.ShoeSeason,
		"recording_date": t.RecordingDate,
		"sold":           t.Sold,
		"created":        t.Created,
	}
}
