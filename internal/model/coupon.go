package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a redeemable discount code. When ProductIDs is non-empty the
// discount applies only to the matching cart lines.
type Coupon struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code       string          `gorm:"uniqueIndex;not null"`
	Type       string          `gorm:"not null"` // percentage | fixed
	Value      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ProductIDs UUIDSlice       `gorm:"type:jsonb;not null;default:'[]'"`
	Active     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
