package rpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"runright.io/internal/cms"
	"runright.io/internal/gate"
	"runright.io/internal/ids"
	"runright.io/internal/query"
)

// ShoesService implements ShoesServer. The catalogue is shared, reads are
// open to every authenticated caller and writes are restricted to the
// distributor and admin tiers.
type ShoesService struct {
	store cms.Store
}

func NewShoesService(store cms.Store) *ShoesService {
	return &ShoesService{store: store}
}

var shoeQueryOptions = query.Options{
	Filterable: []string{"ean", "brand", "model", "season", "gender"},
	Sortable:   []string{"brand", "model", "ean", "season", "gender", "created"},
}

func shoeFilter(q *query.Descriptor) *cms.Filter {
	if strings.Contains(q.FilterOn, ",") {
		return query.TranslateMulti(*q, shoeQueryOptions)
	}
	return query.Translate(*q, shoeQueryOptions)
}

// GetShoe looks a single shoe up by EAN. StringQuery carries the EAN.
func (s *ShoesService) GetShoe(ctx context.Context, q *query.Descriptor) (*cms.Shoe, error) {
	if _, err := gate.Principal(ctx); err != nil {
		return nil, err
	}
	ean := strings.TrimSpace(q.StringQuery)
	if ean == "" {
		return nil, status.Error(codes.InvalidArgument, "Please specify EAN in string_query")
	}
	shoe, err := s.store.Shoes().FindOne(ctx, (&cms.Filter{}).Where("ean", ean))
	if errors.Is(err, cms.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "No shoe found matching specified EAN")
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return shoe, nil
}

// EanExists reports how many catalogue entries carry the given EAN. The
// fitting clients use it to validate scans before creating trials.
func (s *ShoesService) EanExists(ctx context.Context, q *query.Descriptor) (*Result, error) {
	if _, err := gate.Principal(ctx); err != nil {
		return nil, err
	}
	ean := strings.TrimSpace(q.StringQuery)
	if ean == "" {
		return nil, status.Error(codes.InvalidArgument, "Please specify EAN in string_query")
	}
	count, err := s.store.Shoes().Count(ctx, (&cms.Filter{}).Where("ean", ean))
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: count}, nil
}

func (s *ShoesService) GetShoes(ctx context.Context, q *query.Descriptor) (*ShoeList, error) {
	if _, err := gate.Principal(ctx); err != nil {
		return nil, err
	}
	f := shoeFilter(q)
	count, err := s.store.Shoes().Count(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	if count == 0 {
		return nil, status.Error(codes.NotFound, "No results found for this query")
	}
	shoes, err := s.store.Shoes().List(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ShoeList{Shoes: shoes}, nil
}

func (s *ShoesService) CountShoes(ctx context.Context, q *query.Descriptor) (*Result, error) {
	if _, err := gate.Principal(ctx); err != nil {
		return nil, err
	}
	count, err := s.store.Shoes().Count(ctx, shoeFilter(q))
	if err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: count}, nil
}

func (s *ShoesService) SetShoe(ctx context.Context, req *cms.Shoe) (*Result, error) {
	p, err := gate.Require(ctx, cms.RoleDistributor, cms.RoleAdmin)
	if err != nil {
		return nil, err
	}
	sh := *req
	if sh.EAN == "" && sh.Model == "" {
		return nil, status.Error(codes.InvalidArgument, "A shoe needs at least an EAN or a model name")
	}
	if sh.ID == "" {
		sh.ID = ids.New()
		sh.StampCreation(p.Email)
		if err := s.store.Shoes().Upsert(ctx, &sh); err != nil {
			return nil, toStatus(err)
		}
		return &Result{StringResult: sh.ID}, nil
	}
	existing, err := s.store.Shoes().FindOne(ctx, (&cms.Filter{}).Where("shoe_id", sh.ID))
	if err != nil {
		return nil, toStatus(err)
	}
	sh.Audit = existing.Audit
	sh.StampUpdate(p.Email)
	if err := s.store.Shoes().Upsert(ctx, &sh); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}

func (s *ShoesService) RemoveShoe(ctx context.Context, req *RemoveShoeRequest) (*Result, error) {
	if _, err := gate.Require(ctx, cms.RoleAdmin); err != nil {
		return nil, err
	}
	if req.ShoeID == "" {
		return nil, status.Error(codes.InvalidArgument, "shoe_id is required")
	}
	if err := s.store.Shoes().Delete(ctx, req.ShoeID); err != nil {
		return nil, toStatus(err)
	}
	return &Result{IntResult: 1}, nil
}
