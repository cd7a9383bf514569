package cms

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store used by tests and local development.
// All methods are safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	users     []*User
	companies []*Company
	branches  []*Branch
	customers []*Customer
	shoes     []*Shoe
	trials    []*ShoeTrial
	licences  []*LicenceEvent
	counters  map[string]int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{counters: make(map[string]int64)}
}

func (m *Memory) Users() UserStore         { return (*memUsers)(m) }
func (m *Memory) Companies() CompanyStore  { return (*memCompanies)(m) }
func (m *Memory) Branches() BranchStore    { return (*memBranches)(m) }
func (m *Memory) Customers() CustomerStore { return (*memCustomers)(m) }
func (m *Memory) Shoes() ShoeStore         { return (*memShoes)(m) }
func (m *Memory) Trials() TrialStore       { return (*memTrials)(m) }
func (m *Memory) Counters() CounterStore   { return (*memCounters)(m) }

func applyFilter[T any](items []*T, f *Filter, fieldsOf func(*T) map[string]any) []*T {
	var out []*T
	for _, it := range items {
		if f == nil || f.Matches(fieldsOf(it)) {
			out = append(out, it)
		}
	}
	if f == nil {
		return out
	}
	if f.SortField != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return f.Less(fieldsOf(out[i]), fieldsOf(out[j]))
		})
	}
	if f.Skip > 0 {
		if f.Skip >= int64(len(out)) {
			return nil
		}
		out = out[f.Skip:]
	}
	if f.Limit > 0 && f.Limit < int64(len(out)) {
		out = out[:f.Limit]
	}
	return out
}

func countFilter[T any](items []*T, f *Filter, fieldsOf func(*T) map[string]any) int64 {
	var n int64
	for _, it := range items {
		if f == nil || f.Matches(fieldsOf(it)) {
			n++
		}
	}
	return n
}

type memUsers Memory

func (m *memUsers) FindOne(_ context.Context, f *Filter) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if f.Matches(u.fields()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUsers) List(_ context.Context, f *Filter) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := applyFilter(m.users, f, (*User).fields)
	out := make([]*User, len(matched))
	for i, u := range matched {
		cp := *u
		out[i] = &cp
	}
	return out, nil
}

func (m *memUsers) Count(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return countFilter(m.users, f, (*User).fields), nil
}

func (m *memUsers) Upsert(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	for i, existing := range m.users {
		if existing.ID == u.ID {
			m.users[i] = &cp
			return nil
		}
	}
	m.users = append(m.users, &cp)
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return ErrNotFound
}

func (m *memUsers) SetResetToken(_ context.Context, email, token string, generated int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u.ResetToken = token
			u.ResetGenerated = generated
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) ClearResetToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			u.ResetToken = ""
			u.ResetGenerated = 0
			return nil
		}
	}
	return ErrNotFound
}

func (m *memUsers) Delete(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*User
	var removed int64
	for _, u := range m.users {
		if f.Matches(u.fields()) {
			removed++
			continue
		}
		kept = append(kept, u)
	}
	m.users = kept
	return removed, nil
}

type memCompanies Memory

func (m *memCompanies) FindOne(_ context.Context, f *Filter) (*Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if f.Matches(c.fields()) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCompanies) List(_ context.Context, f *Filter) ([]*Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := applyFilter(m.companies, f, (*Company).fields)
	out := make([]*Company, len(matched))
	for i, c := range matched {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (m *memCompanies) Count(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return countFilter(m.companies, f, (*Company).fields), nil
}

func (m *memCompanies) Create(_ context.Context, c *Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.companies {
		if existing.Name == c.Name {
			return ErrAlreadyExists
		}
	}
	cp := *c
	m.companies = append(m.companies, &cp)
	return nil
}

func (m *memCompanies) Update(_ context.Context, c *Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.companies {
		if existing.ID == c.ID {
			cp := *c
			m.companies[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (m *memCompanies) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.companies {
		if existing.ID == id {
			m.companies = append(m.companies[:i], m.companies[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memCompanies) AppendLicenceEvent(_ context.Context, ev *LicenceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.licences = append(m.licences, &cp)
	return nil
}

func (m *memCompanies) LicenceEvents(_ context.Context, companyID string) ([]*LicenceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*LicenceEvent
	for _, ev := range m.licences {
		if ev.CompanyID == companyID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memBranches Memory

func (m *memBranches) FindOne(_ context.Context, f *Filter) (*Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.branches {
		if f.Matches(b.fields()) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memBranches) List(_ context.Context, f *Filter) ([]*Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := applyFilter(m.branches, f, (*Branch).fields)
	out := make([]*Branch, len(matched))
	for i, b := range matched {
		cp := *b
		out[i] = &cp
	}
	return out, nil
}

func (m *memBranches) Create(_ context.Context, b *Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.branches = append(m.branches, &cp)
	return nil
}

func (m *memBranches) Update(_ context.Context, b *Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.branches {
		if existing.CompanyID == b.CompanyID && existing.BranchID == b.BranchID {
			cp := *b
			m.branches[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

type memCustomers Memory

func (m *memCustomers) FindOne(_ context.Context, f *Filter) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if f.Matches(c.fields()) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCustomers) List(_ context.Context, f *Filter) ([]*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := applyFilter(m.customers, f, (*Customer).fields)
	out := make([]*Customer, len(matched))
	for i, c := range matched {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (m *memCustomers) Count(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return countFilter(m.customers, f, (*Customer).fields), nil
}

func (m *memCustomers) Upsert(_ context.Context, c *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	for i, existing := range m.customers {
		if existing.ID == c.ID {
			m.customers[i] = &cp
			return nil
		}
	}
	m.customers = append(m.customers, &cp)
	return nil
}

func (m *memCustomers) Delete(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*Customer
	var removed int64
	for _, c := range m.customers {
		if f.Matches(c.fields()) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.customers = kept
	return removed, nil
}

type memShoes Memory

func (m *memShoes) FindOne(_ context.Context, f *Filter) (*Shoe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shoes {
		if f.Matches(s.fields()) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memShoes) List(_ context.Context, f *Filter) ([]*Shoe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := applyFilter(m.shoes, f, (*Shoe).fields)
	out := make([]*Shoe, len(matched))
	for i, s := range matched {
		cp := *s
		out[i] = &cp
	}
	return out, nil
}

func (m *memShoes) Count(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return countFilter(m.shoes, f, (*Shoe).fields), nil
}

func (m *memShoes) Upsert(_ context.Context, s *Shoe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	for i, existing := range m.shoes {
		if existing.ID == s.ID {
			m.shoes[i] = &cp
			return nil
		}
	}
	m.shoes = append(m.shoes, &cp)
	return nil
}

func (m *memShoes) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.shoes {
		if existing.ID == id {
			m.shoes = append(m.shoes[:i], m.shoes[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memTrials Memory

func (m *memTrials) List(_ context.Context, f *Filter) ([]*ShoeTrial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := applyFilter(m.trials, f, (*ShoeTrial).fields)
	out := make([]*ShoeTrial, len(matched))
	for i, t := range matched {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

func (m *memTrials) Count(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return countFilter(m.trials, f, (*ShoeTrial).fields), nil
}

func (m *memTrials) Insert(_ context.Context, t *ShoeTrial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.trials = append(m.trials, &cp)
	return nil
}

func (m *memTrials) Delete(_ context.Context, f *Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*ShoeTrial
	var removed int64
	for _, t := range m.trials {
		if f.Matches(t.fields()) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.trials = kept
	return removed, nil
}

type memCounters Memory

func (m *memCounters) Next(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}
