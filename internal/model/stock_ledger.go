package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerKind tags every stock-affecting event. The sign of the quantity
// delta is fixed by the kind, except adjustments which carry an explicit
// sign.
type LedgerKind string

const (
	LedgerSale           LedgerKind = "sale"
	LedgerPurchase       LedgerKind = "purchase"
	LedgerCustomerReturn LedgerKind = "customer_return"
	LedgerSupplierReturn LedgerKind = "supplier_return"
	LedgerAdjustment     LedgerKind = "adjustment"
)

// Direction returns +1 for kinds that add stock, -1 for kinds that remove
// it, and 0 for adjustments whose sign is explicit.
func (k LedgerKind) Direction() int {
	switch k {
	case LedgerPurchase, LedgerCustomerReturn:
		return 1
	case LedgerSale, LedgerSupplierReturn:
		return -1
	default:
		return 0
	}
}

// CounterpartyKind discriminates who is on the other side of a stock event.
type CounterpartyKind string

const (
	CounterpartyCustomer CounterpartyKind = "customer"
	CounterpartySupplier CounterpartyKind = "supplier"
	CounterpartySystem   CounterpartyKind = "system"
)

// StockLedgerEntry is one immutable audit record of a stock change.
// Entries are never updated or deleted after creation; the product counter
// is always reconstructible by replaying them from zero:
// NewStock = PreviousStock + Quantity for every row.
type StockLedgerEntry struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind             LedgerKind `gorm:"not null;index"`
	Quantity         int        `gorm:"not null"` // signed delta
	PreviousStock    int        `gorm:"not null"`
	NewStock         int        `gorm:"not null"`
	UnitPrice        decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	TotalValue       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CounterpartyKind CounterpartyKind `gorm:"not null;default:'system'"`
	CounterpartyID   *uuid.UUID       `gorm:"type:uuid"`
	ActorID          uuid.UUID        `gorm:"type:uuid;not null"`
	ReferenceID      *uuid.UUID       `gorm:"type:uuid"` // order id when Kind is sale
	Note             string
	CreatedAt        time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (StockLedgerEntry) TableName() string { return "stock_ledger" }
