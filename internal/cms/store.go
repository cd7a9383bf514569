package cms

import "context"

// Store bundles the persistence operations the service layer depends on.
type Store interface {
	Users() UserStore
	Companies() CompanyStore
	Branches() BranchStore
	Customers() CustomerStore
	Shoes() ShoeStore
	Trials() TrialStore
	Counters() CounterStore
}

// UserStore manages operator accounts.
type UserStore interface {
	FindOne(ctx context.Context, f *Filter) (*User, error)
	List(ctx context.Context, f *Filter) ([]*User, error)
	Count(ctx context.Context, f *Filter) (int64, error)
	Upsert(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetResetToken(ctx context.Context, email, token string, generated int64) (bool, error)
	ClearResetToken(ctx context.Context, userID string) error
	Delete(ctx context.Context, f *Filter) (int64, error)
}

// CompanyStore manages tenants.
type CompanyStore interface {
	FindOne(ctx context.Context, f *Filter) (*Company, error)
	List(ctx context.Context, f *Filter) ([]*Company, error)
	Count(ctx context.Context, f *Filter) (int64, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, id string) error
	AppendLicenceEvent(ctx context.Context, ev *LicenceEvent) error
	LicenceEvents(ctx context.Context, companyID string) ([]*LicenceEvent, error)
}

// BranchStore manages company branches.
type BranchStore interface {
	FindOne(ctx context.Context, f *Filter) (*Branch, error)
	List(ctx context.Context, f *Filter) ([]*Branch, error)
	Create(ctx context.Context, b *Branch) error
	Update(ctx context.Context, b *Branch) error
}

// CustomerStore manages end customers.
type CustomerStore interface {
	FindOne(ctx context.Context, f *Filter) (*Customer, error)
	List(ctx context.Context, f *Filter) ([]*Customer, error)
	Count(ctx context.Context, f *Filter) (int64, error)
	Upsert(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, f *Filter) (int64, error)
}

// ShoeStore manages the shared shoe catalogue.
type ShoeStore interface {
	FindOne(ctx context.Context, f *Filter) (*Shoe, error)
	List(ctx context.Context, f *Filter) ([]*Shoe, error)
	Count(ctx context.Context, f *Filter) (int64, error)
	Upsert(ctx context.Context, s *Shoe) error
	Delete(ctx context.Context, id string) error
}

// TrialStore manages recorded fitting sessions.
type TrialStore interface {
	List(ctx context.Context, f *Filter) ([]*ShoeTrial, error)
	Count(ctx context.Context, f *Filter) (int64, error)
	Insert(ctx context.Context, t *ShoeTrial) error
	Delete(ctx context.Context, f *Filter) (int64, error)
}

// CounterStore is the atomic sequence allocator behind human-readable ids.
type CounterStore interface {
	Next(ctx context.Context, name string) (int64, error)
}
