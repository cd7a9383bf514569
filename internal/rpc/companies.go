package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"runright.io/internal/cms"
	"runright.io/internal/gate"
	"runright.io/internal/ids"
	"runright.io/internal/query"
)

const branchCounterName = "branch"

// CompaniesService implements CompaniesServer.
type CompaniesService struct {
	store cms.Store
}

func NewCompaniesService(store cms.Store) *CompaniesService {
	return &CompaniesService{store: store}
}

var companyQueryOptions = query.Options{
	Filterable: []string{"name"},
	Sortable:   []string{"name", "created"},
}

// AddCompany registers a new tenant. Company names are unique system-wide.
func (s *CompaniesService) AddCompany(ctx context.Context, req *cms.Company) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "Company name is required")
	}
	c := &cms.Company{
		ID:            ids.New(),
		Name:          name,
		Blocked:       req.Blocked,
		LicenceExpiry: req.LicenceExpiry,
		MonthCount:    req.MonthCount,
		PaymentModel:  req.PaymentModel,
		Type:          req.Type,
	}
	c.StampCreation(p.Email)
	if err := s.store.Companies().Create(ctx, c); err != nil {
		if errors.Is(err, cms.ErrAlreadyExists) {
			return nil, status.Error(codes.AlreadyExists, "A company already exists by this name")
		}
		return nil, toStatus(err)
	}
	return &Result{StringResult: c.ID}, nil
}

// EditCompany updates a tenant record. Non-privileged callers may only touch
// their own tenant.
func (s *CompaniesService) EditCompany(ctx context.Context, req *cms.Company) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "Invalid company_id specified")
	}
	if !query.SameTenant(p, req.ID) {
		return nil, status.Error(codes.PermissionDenied, "You do not have permission to edit this company")
	}
	existing, err := s.store.Companies().FindOne(ctx, (&cms.Filter{}).Where("company_id", req.ID))
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find company with specified id")
		}
		return nil, toStatus(err)
	}
	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	// Blocking and licence state stay admin-only.
	if p.IsAdmin() {
		existing.Blocked = req.Blocked
		existing.Type = req.Type
		existing.PaymentModel = req.PaymentModel
	}
	existing.StampUpdate(p.Email)
	if err := s.store.Companies().Update(ctx, existing); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

func (s *CompaniesService) RemoveCompany(ctx context.Context, req *RemoveCompanyRequest) (*Result, error) {
	_, err := gate.Require(ctx, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if req.CompanyID == "" {
		return nil, status.Error(codes.InvalidArgument, "Invalid company_id specified")
	}
	if err := s.store.Companies().Delete(ctx, req.CompanyID); err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find company with specified id")
		}
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

// GetCompany resolves a single company by id or exact name in StringQuery.
func (s *CompaniesService) GetCompany(ctx context.Context, q *query.Descriptor) (*cms.Company, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(q.StringQuery)
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "Please specify a company name in string_query")
	}
	f := &cms.Filter{}
	if ids.Valid(key) {
		f.Where("company_id", key)
	} else {
		f.Where("name", key)
	}
	if err := query.RestrictToCompanyID(f, p); err != nil {
		return nil, toStatus(err)
	}
	company, err := s.store.Companies().FindOne(ctx, f)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find company with specified id")
		}
		return nil, toStatus(err)
	}
	return company, nil
}

func (s *CompaniesService) GetCompanies(ctx context.Context, q *query.Descriptor) (*CompanyList, error) {
	p, err := gate.Require(ctx, cms.RoleTechnician, cms.RoleStore, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	f := query.Translate(*q, companyQueryOptions)
	if err := query.RestrictToCompanyID(f, p); err != nil {
		return nil, toStatus(err)
	}
	companies, err := s.store.Companies().List(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CompanyList{Companies: companies}, nil
}

func (s *CompaniesService) CountCompanies(ctx context.Context, q *query.Descriptor) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	f := query.Translate(*q, companyQueryOptions)
	if err := query.RestrictToCompanyID(f, p); err != nil {
		return nil, toStatus(err)
	}
	count, err := s.store.Companies().Count(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: count}, nil
}

// AddBranch opens a branch under a company. The branch id comes from the
// shared sequence so it stays unique across tenants.
func (s *CompaniesService) AddBranch(ctx context.Context, req *AddBranchRequest) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CompanyID) == "" {
		return nil, status.Error(codes.InvalidArgument, "Invalid company_id specified")
	}
	if !query.SameTenant(p, req.CompanyID) {
		return nil, status.Error(codes.PermissionDenied, "You do not have permission to edit this company")
	}
	if _, err := s.store.Companies().FindOne(ctx, (&cms.Filter{}).Where("company_id", req.CompanyID)); err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find company with specified id")
		}
		return nil, toStatus(err)
	}
	seq, err := s.store.Counters().Next(ctx, branchCounterName)
	if err != nil {
		return nil, toStatus(err)
	}
	b := &cms.Branch{
		CompanyID: req.CompanyID,
		BranchID:  fmt.Sprintf("%04d", seq),
		Name:      strings.TrimSpace(req.Name),
	}
	b.StampCreation(p.Email)
	if err := s.store.Branches().Create(ctx, b); err != nil {
		return nil, toStatus(err)
	}
	return &Result{StringResult: b.BranchID}, nil
}

func (s *CompaniesService) EditBranch(ctx context.Context, req *cms.Branch) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if req.BranchID == "" {
		return nil, status.Error(codes.InvalidArgument, "branch_id is required")
	}
	f := (&cms.Filter{}).Where("branch_id", req.BranchID)
	query.ApplyCompanyScope(f, p)
	existing, err := s.store.Branches().FindOne(ctx, f)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find a branch with the specified ID")
		}
		return nil, toStatus(err)
	}
	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	existing.StampUpdate(p.Email)
	if err := s.store.Branches().Update(ctx, existing); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

// GetBranch resolves a single branch by id in StringQuery.
func (s *CompaniesService) GetBranch(ctx context.Context, q *query.Descriptor) (*cms.Branch, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	branchID := strings.TrimSpace(q.StringQuery)
	if branchID == "" {
		return nil, status.Error(codes.InvalidArgument, "branch_id is required")
	}
	f := (&cms.Filter{}).Where("branch_id", branchID)
	query.ApplyCompanyScope(f, p)
	branch, err := s.store.Branches().FindOne(ctx, f)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find a branch with the specified ID")
		}
		return nil, toStatus(err)
	}
	return branch, nil
}

// SetLicence replaces a company's licence terms and appends the change to
// the licence history.
func (s *CompaniesService) SetLicence(ctx context.Context, req *SetLicenceRequest) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CompanyID) == "" {
		return nil, status.Error(codes.InvalidArgument, "Invalid company_id specified")
	}
	company, err := s.store.Companies().FindOne(ctx, (&cms.Filter{}).Where("company_id", req.CompanyID))
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "Could not find company with specified id")
		}
		return nil, toStatus(err)
	}
	company.Type = req.Type
	company.LicenceExpiry = req.LicenceExpiry
	company.MonthCount = int32(req.MonthCount)
	if req.PaymentModel != "" {
		company.PaymentModel = req.PaymentModel
	}
	company.StampUpdate(p.Email)
	if err := s.store.Companies().Update(ctx, company); err != nil {
		return nil, toStatus(err)
	}
	ev := &cms.LicenceEvent{
		ID:           ids.New(),
		CompanyID:    company.ID,
		Type:         req.Type,
		MonthCount:   int32(req.MonthCount),
		PaymentModel: company.PaymentModel,
		Created:      cms.NowMillis(),
	}
	if err := s.store.Companies().AppendLicenceEvent(ctx, ev); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

// GetLicenceHistory returns a company's licence changes in the order they
// were recorded. StringQuery carries the company id.
func (s *CompaniesService) GetLicenceHistory(ctx context.Context, q *query.Descriptor) (*LicenceEventList, error) {
	if _, err := gate.Require(ctx, cms.RoleAdmin); err != nil {
		return nil, err
	}
	companyID := strings.TrimSpace(q.StringQuery)
	if companyID == "" {
		return nil, status.Error(codes.InvalidArgument, "Invalid company_id specified")
	}
	events, err := s.store.Companies().LicenceEvents(ctx, companyID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LicenceEventList{Events: events}, nil
}
