package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"runright.io/internal/cms"
	"runright.io/internal/gate"
	"runright.io/internal/ids"
	"runright.io/internal/query"
)

// CustomersService implements CustomersServer. Technicians and store
// accounts only see their own branch; managers and above see the whole
// company.
type CustomersService struct {
	store cms.Store
}

func NewCustomersService(store cms.Store) *CustomersService {
	return &CustomersService{store: store}
}

var customerQueryOptions = query.Options{
	Filterable: []string{"first_name", "last_name", "email", "gender"},
	Sortable:   []string{"first_name", "last_name", "email", "created", "updated"},
}

// customerBranchTiers are the roles pinned to their own branch on customer
// reads.
var customerBranchTiers = []int{cms.RoleTechnician, cms.RoleStore}

// customerFilter accepts both descriptor forms: the single-field contract
// and the comma-separated multi-field one used by the fitting clients.
func customerFilter(q *query.Descriptor) *cms.Filter {
	if strings.Contains(q.FilterOn, ",") {
		return query.TranslateMulti(*q, customerQueryOptions)
	}
	return query.Translate(*q, customerQueryOptions)
}

func (s *CustomersService) GetCustomers(ctx context.Context, q *query.Descriptor) (*CustomerList, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	f := customerFilter(q)
	query.ApplyBranchScope(f, p, customerBranchTiers...)
	customers, err := s.store.Customers().List(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CustomerList{Customers: customers}, nil
}

func (s *CustomersService) CountCustomers(ctx context.Context, q *query.Descriptor) (*Result, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	f := customerFilter(q)
	query.ApplyBranchScope(f, p, customerBranchTiers...)
	count, err := s.store.Customers().Count(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: count}, nil
}

// SetCustomer creates a customer when ID is blank and edits one otherwise.
// Non-admin callers stay pinned to their own company and, for the
// branch-local tiers, to their own branch.
func (s *CustomersService) SetCustomer(ctx context.Context, req *cms.Customer) (*Result, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	c := *req
	if !p.IsAdmin() {
		c.CompanyID = p.CompanyID
	}
	if p.HasRole(customerBranchTiers...) {
		c.BranchID = p.BranchID
	}
	if c.ID == "" {
		c.ID = ids.New()
		c.StampCreation(p.Email)
		if err := s.store.Customers().Upsert(ctx, &c); err != nil {
			return nil, toStatus(err)
		}
		return &Result{StringResult: c.ID}, nil
	}
	scope := (&cms.Filter{}).Where("customer_id", c.ID)
	query.ApplyBranchScope(scope, p, customerBranchTiers...)
	existing, err := s.store.Customers().FindOne(ctx, scope)
	if err != nil {
		return nil, toStatus(err)
	}
	c.Audit = existing.Audit
	c.StampUpdate(p.Email)
	if err := s.store.Customers().Upsert(ctx, &c); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

func (s *CustomersService) RemoveCustomer(ctx context.Context, req *RemoveCustomerRequest) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if req.CustomerID == "" {
		return nil, status.Error(codes.InvalidArgument, "customer_id is required")
	}
	f := (&cms.Filter{}).Where("customer_id", req.CustomerID)
	query.ApplyCompanyScope(f, p)
	deleted, err := s.store.Customers().Delete(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: deleted}, nil
}
