package dto

import (
	"github.com/chathuwa-whiz/zors-pos/internal/pos"

	"github.com/shopspring/decimal"
)

// ─── Tab management ──────────────────────────────────────────────────────────

type ReorderRequest struct {
	DraggedID string `json:"dragged_id" validate:"required,uuid"`
	TargetID  string `json:"target_id"  validate:"required,uuid"`
}

// TabResponse is one open order plus its freshly computed totals.
type TabResponse struct {
	Order  pos.Order  `json:"order"`
	Totals pos.Totals `json:"totals"`
	Active bool       `json:"active"`
}

type TabListResponse struct {
	Tabs     []TabResponse `json:"tabs"`
	ActiveID string        `json:"active_id"`
}

// ─── Cart mutation ───────────────────────────────────────────────────────────

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

type ChangeQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Delta     int    `json:"delta"      validate:"required"`
}

// ─── Order detail edits ──────────────────────────────────────────────────────

type SetOrderTypeRequest struct {
	Type string `json:"type" validate:"required,oneof=dine_in takeaway delivery"`
}

type SetChargeRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

type SetDiscountRequest struct {
	Percentage decimal.Decimal `json:"percentage" validate:"min=0,max=100"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type SetKitchenNoteRequest struct {
	Note string `json:"note"`
}

type AssignCustomerRequest struct {
	// CustomerID empty clears the assignment.
	CustomerID *string `json:"customer_id" validate:"omitempty,uuid"`
}
