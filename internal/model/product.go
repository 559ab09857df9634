package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry plus the authoritative inventory counter.
// StockOnHand is mutated only through the ledger commit path; StockReserved
// holds the units currently claimed by open tabs. Available stock is
// StockOnHand - StockReserved.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string          `gorm:"index;not null"`
	Category      string          `gorm:"not null"`
	Barcode       *string         `gorm:"uniqueIndex"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountPct   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	StockOnHand   int             `gorm:"not null;default:0"`
	StockReserved int             `gorm:"not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
