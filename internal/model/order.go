package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the persisted record of a completed bill. The id is generated by
// the client session, which makes the completion write idempotent under
// retry: a second persist of the same id is a no-op.
type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"not null"`
	CashierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	Type           string          `gorm:"not null"` // dine_in | takeaway | delivery
	Status         string          `gorm:"not null;default:'completed'"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CouponCode     *string
	CouponDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TableCharge    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DeliveryCharge decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	KitchenNote    string

	// Payment capture, tagged by PaymentMethod. Surcharge applies only here.
	PaymentMethod    string           `gorm:"not null"` // cash | card
	PaymentSurcharge decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	FinalTotal       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CashGiven        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CashChange       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CardInvoiceID    *string
	CardIssuer       *string

	CreatedAt   time.Time
	CompletedAt time.Time

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Customer *Customer   `gorm:"foreignKey:CustomerID"`
}

// OrderItem is one persisted cart line with the price snapshot taken when
// the line was opened.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity  int             `gorm:"not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
