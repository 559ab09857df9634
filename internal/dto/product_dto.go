package dto

import "github.com/shopspring/decimal"

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Barcode  string `form:"barcode"`
	Name     string `form:"name"`
	Category string `form:"category"`
	Active   string `form:"active"` // "" = active only | "false" | "all"
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateProductRequest struct {
	Name         string          `json:"name"          validate:"required,min=1"`
	Category     string          `json:"category"      validate:"required"`
	Barcode      *string         `json:"barcode"       validate:"omitempty,min=4"`
	CostPrice    decimal.Decimal `json:"cost_price"    validate:"min=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"required"`
	DiscountPct  decimal.Decimal `json:"discount_pct"  validate:"min=0,max=100"`
	InitialStock int             `json:"initial_stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Barcode      *string          `json:"barcode"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	DiscountPct  *decimal.Decimal `json:"discount_pct"`
}

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Barcode       *string         `json:"barcode,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	StockOnHand   int             `json:"stock_on_hand"`
	StockReserved int             `json:"stock_reserved"`
	Available     int             `json:"available"`
	Active        bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
