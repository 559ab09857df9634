package dto

import "github.com/shopspring/decimal"

// StockEventRequest records a stock-affecting event outside the checkout
// path: purchase receipt, customer return, supplier return or ad-hoc
// adjustment. Quantity is positive for all kinds except adjustment, whose
// sign is explicit.
type StockEventRequest struct {
	ProductID        string  `json:"product_id"        validate:"required,uuid"`
	Kind             string  `json:"kind"              validate:"required,oneof=purchase customer_return supplier_return adjustment"`
	Quantity         int     `json:"quantity"          validate:"required"`
	CounterpartyKind string  `json:"counterparty_kind" validate:"omitempty,oneof=customer supplier system"`
	CounterpartyID   *string `json:"counterparty_id"   validate:"omitempty,uuid"`
	Note             string  `json:"note"`
}

// LedgerListFilter is bound from the query string of GET /v1/stock/ledger.
type LedgerListFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Kind      string `form:"kind"       validate:"omitempty,oneof=sale purchase customer_return supplier_return adjustment"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type LedgerEntryResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name,omitempty"`
	Kind             string          `json:"kind"`
	Quantity         int             `json:"quantity"`
	PreviousStock    int             `json:"previous_stock"`
	NewStock         int             `json:"new_stock"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalValue       decimal.Decimal `json:"total_value"`
	CounterpartyKind string          `json:"counterparty_kind"`
	CounterpartyID   *string         `json:"counterparty_id,omitempty"`
	ActorID          string          `json:"actor_id"`
	ReferenceID      *string         `json:"reference_id,omitempty"`
	Note             string          `json:"note,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

type LedgerListResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ReconcileResponse compares the replayed ledger against the live counter.
// StockReserved is reported so an operator can spot holds that outlived
// their tab; it is never corrected automatically, because live carts hold
// reservations legitimately.
type ReconcileResponse struct {
	ProductID     string `json:"product_id"`
	LedgerTotal   int    `json:"ledger_total"`
	StockOnHand   int    `json:"stock_on_hand"`
	StockReserved int    `json:"stock_reserved"`
	Drift         int    `json:"drift"`
	InAgreement   bool   `json:"in_agreement"`
}
