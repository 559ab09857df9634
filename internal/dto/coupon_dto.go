package dto

import "github.com/shopspring/decimal"

type CreateCouponRequest struct {
	Code       string          `json:"code"        validate:"required,min=3"`
	Type       string          `json:"type"        validate:"required,oneof=percentage fixed"`
	Value      decimal.Decimal `json:"value"       validate:"required"`
	ProductIDs []string        `json:"product_ids" validate:"omitempty,dive,uuid"`
}

type CouponResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	ProductIDs []string        `json:"product_ids"`
	Active     bool            `json:"active"`
}
