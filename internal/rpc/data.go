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

// DataService implements DataServer, the trial recording surface used by
// the in-store fitting devices.
type DataService struct {
	store cms.Store
}

func NewDataService(store cms.Store) *DataService {
	return &DataService{store: store}
}

// SetTrial stores one fitting session. Devices and technicians record under
// their own company and branch no matter what the payload claims.
func (s *DataService) SetTrial(ctx context.Context, req *cms.ShoeTrial) (*Result, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.CustomerID == "" {
		return nil, status.Error(codes.InvalidArgument, "customer_id is required")
	}
	t := *req
	if !p.IsAdmin() {
		t.CompanyID = p.CompanyID
	}
	if p.HasRole(cms.RoleDevice, cms.RoleTechnician, cms.RoleStore) {
		t.BranchID = p.BranchID
	}
	if t.RecordingDate == 0 {
		t.RecordingDate = cms.NowMillis()
	}
	t.ID = ids.New()
	t.StampCreation(p.Email)
	if err := s.store.Trials().Insert(ctx, &t); err != nil {
		return nil, toStatus(err)
	}
	return &Result{StringResult: t.ID}, nil
}

// trialsByCustomer builds the scoped filter shared by the list and count
// forms. StringQuery names the customer.
func trialsByCustomer(ctx context.Context, q *query.Descriptor) (*cms.Filter, error) {
	p, err := gate.Principal(ctx)
	if err != nil {
		return nil, err
	}
	customerID := strings.TrimSpace(q.StringQuery)
	if customerID == "" {
		return nil, status.Error(codes.InvalidArgument, "customer_id is required")
	}
	f := (&cms.Filter{}).Where("customer_id", customerID)
	query.ApplyBranchScope(f, p, cms.RoleTechnician, cms.RoleStore)
	if q.StartMillis != 0 {
		f.Cond("recording_date", cms.OpGte, q.StartMillis)
	}
	if q.EndMillis != 0 {
		f.Cond("recording_date", cms.OpLte, q.EndMillis)
	}
	f.SortField = "recording_date"
	f.SortDesc = true
	if q.Skip > 0 {
		f.Skip = q.Skip
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	return f, nil
}

func (s *DataService) GetTrialsByCustomer(ctx context.Context, q *query.Descriptor) (*TrialList, error) {
	f, err := trialsByCustomer(ctx, q)
	if err != nil {
		return nil, err
	}
	trials, err := s.store.Trials().List(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TrialList{Trials: trials}, nil
}

func (s *DataService) CountTrialsByCustomer(ctx context.Context, q *query.Descriptor) (*Result, error) {
	f, err := trialsByCustomer(ctx, q)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Trials().Count(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: count}, nil
}

// RemoveTrial deletes one recording. Non-admin callers can only reach
// recordings of their own company.
func (s *DataService) RemoveTrial(ctx context.Context, req *RemoveTrialRequest) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleTechnician, cms.RoleStore, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if req.TrialID == "" {
		return nil, status.Error(codes.InvalidArgument, "recording_id is required")
	}
	if !ids.Valid(req.TrialID) {
		return nil, status.Error(codes.InvalidArgument, "Invalid recording_id")
	}
	f := (&cms.Filter{}).Where("trial_id", req.TrialID)
	query.ApplyCompanyScope(f, p)
	deleted, err := s.store.Trials().Delete(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: deleted}, nil
}
