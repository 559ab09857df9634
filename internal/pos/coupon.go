package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// Coupon discounts either the whole order or only the lines whose product
// appears in ProductIDs. At most one coupon is applied per order.
type Coupon struct {
	Code       string          `json:"code"`
	Type       CouponType      `json:"type"`
	Value      decimal.Decimal `json:"value"`
	ProductIDs []uuid.UUID     `json:"product_ids,omitempty"`
}

// DiscountOn computes the coupon discount over the applicable lines.
// Fixed coupons are capped at the applicable subtotal so the result is
// never negative.
func (c *Coupon) DiscountOn(items []CartItem) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}

	applicable := decimal.Zero
	for _, item := range items {
		if c.appliesTo(item.ProductID) {
			applicable = applicable.Add(item.Subtotal)
		}
	}

	switch c.Type {
	case CouponPercentage:
		return applicable.Mul(c.Value).Div(decimal.NewFromInt(100))
	case CouponFixed:
		if c.Value.GreaterThan(applicable) {
			return applicable
		}
		return c.Value
	default:
		return decimal.Zero
	}
}

func (c *Coupon) appliesTo(productID uuid.UUID) bool {
	if len(c.ProductIDs) == 0 {
		return true
	}
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
