package service

import (
	"context"
	"fmt"

	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/model"
	"github.com/chathuwa-whiz/zors-pos/internal/pos"
	"github.com/chathuwa-whiz/zors-pos/internal/repository"

	"github.com/google/uuid"
)

type CouponService interface {
	Create(ctx context.Context, req dto.CreateCouponRequest) (*dto.CouponResponse, error)
	List(ctx context.Context) ([]dto.CouponResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Resolve looks up an active coupon by code for cart application.
	Resolve(ctx context.Context, code string) (*pos.Coupon, error)
}

type couponService struct {
	coupons repository.CouponRepository
}

func NewCouponService(coupons repository.CouponRepository) CouponService {
	return &couponService{coupons: coupons}
}

func (s *couponService) Create(ctx context.Context, req dto.CreateCouponRequest) (*dto.CouponResponse, error) {
	ids := make(model.UUIDSlice, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}

	c := &model.Coupon{
		Code:       req.Code,
		Type:       req.Type,
		Value:      req.Value,
		ProductIDs: ids,
		Active:     true,
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := couponToResponse(c)
	return &resp, nil
}

func (s *couponService) List(ctx context.Context) ([]dto.CouponResponse, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CouponResponse, 0, len(coupons))
	for i := range coupons {
		out = append(out, couponToResponse(&coupons[i]))
	}
	return out, nil
}

func (s *couponService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.coupons.Deactivate(ctx, id)
}

func (s *couponService) Resolve(ctx context.Context, code string) (*pos.Coupon, error) {
	c, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("coupon %q not found", code)
	}
	return &pos.Coupon{
		Code:       c.Code,
		Type:       pos.CouponType(c.Type),
		Value:      c.Value,
		ProductIDs: append([]uuid.UUID(nil), c.ProductIDs...),
	}, nil
}

func couponToResponse(c *model.Coupon) dto.CouponResponse {
	ids := make([]string, 0, len(c.ProductIDs))
	for _, id := range c.ProductIDs {
		ids = append(ids, id.String())
	}
	return dto.CouponResponse{
		ID:         c.ID.String(),
		Code:       c.Code,
		Type:       c.Type,
		Value:      c.Value,
		ProductIDs: ids,
		Active:     c.Active,
	}
}
