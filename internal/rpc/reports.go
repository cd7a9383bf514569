package rpc

import (
	"context"
	"time"

	"runright.io/internal/cms"
	"runright.io/internal/gate"
	"runright.io/internal/query"
)

// Version is reported by the diagnostics probe.
const Version = "1.0.0"

// Sale record listings clamp the page size server side. A request outside
// (0, 50] falls back to the default instead of erroring.
const (
	saleRecordsMaxLimit     = 50
	saleRecordsDefaultLimit = 10
)

// ReportsService implements ReportsServer.
type ReportsService struct {
	store cms.Store
}

func NewReportsService(store cms.Store) *ReportsService {
	return &ReportsService{store: store}
}

// GetData is the unauthenticated diagnostics probe. It bypasses the gate,
// so it must never touch tenant data.
func (s *ReportsService) GetData(_ context.Context, _ *GetDataRequest) (*DataResponse, error) {
	return &DataResponse{
		Status:  "ok",
		Service: "runright-api",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// saleRecordsFilter builds the scoped filter for sold trials.
func saleRecordsFilter(ctx context.Context, req *SaleRecordsRequest) (*cms.Filter, error) {
	p, err := gate.Require(ctx, cms.RoleTechnician, cms.RoleStore, cms.RoleManager, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	q := req.Query
	f := query.Translate(q, query.Options{
		TimeField: "recording_date",
		Sortable:  []string{"recording_date"},
	})
	f.Where("sold", true)
	query.ApplyBranchScope(f, p, cms.RoleTechnician, cms.RoleStore)
	if q.Limit > 0 && q.Limit <= saleRecordsMaxLimit {
		f.Limit = q.Limit
	} else {
		f.Limit = saleRecordsDefaultLimit
	}
	return f, nil
}

func (s *ReportsService) GetSaleRecords(ctx context.Context, req *SaleRecordsRequest) (*TrialList, error) {
	f, err := saleRecordsFilter(ctx, req)
	if err != nil {
		return nil, err
	}
	trials, err := s.store.Trials().List(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TrialList{Trials: trials}, nil
}

func (s *ReportsService) CountSaleRecords(ctx context.Context, req *SaleRecordsRequest) (*Result, error) {
	f, err := saleRecordsFilter(ctx, req)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Trials().Count(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: count}, nil
}
