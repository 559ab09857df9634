package dto

import "github.com/shopspring/decimal"

// OrderHistoryFilter is bound from the query string of GET /v1/orders.
type OrderHistoryFilter struct {
	Date      string `form:"date"` // YYYY-MM-DD
	CashierID string `form:"cashier_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderHistoryItem struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	CashierID      string              `json:"cashier_id"`
	CustomerID     *string             `json:"customer_id,omitempty"`
	Type           string              `json:"type"`
	Status         string              `json:"status"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	CouponCode     *string             `json:"coupon_code,omitempty"`
	CouponDiscount decimal.Decimal     `json:"coupon_discount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TableCharge    decimal.Decimal     `json:"table_charge"`
	DeliveryCharge decimal.Decimal     `json:"delivery_charge"`
	Total          decimal.Decimal     `json:"total"`
	PaymentMethod  string              `json:"payment_method"`
	Surcharge      decimal.Decimal     `json:"surcharge"`
	FinalTotal     decimal.Decimal     `json:"final_total"`
	Items          []OrderItemResponse `json:"items"`
	CompletedAt    string              `json:"completed_at"`
}

type OrderListResponse struct {
	Data  []OrderHistoryItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
