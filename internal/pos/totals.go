package pos

import "github.com/shopspring/decimal"

// Totals is the derived breakdown of an order. It is recomputed from scratch
// on every read — never incrementally patched — so repeated calls on an
// unchanged order always agree.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TableCharge    decimal.Decimal `json:"table_charge"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Total          decimal.Decimal `json:"total"`
	Surcharge      decimal.Decimal `json:"surcharge"`
	FinalTotal     decimal.Decimal `json:"final_total"`
}

// ComputeTotals maps an order to its totals breakdown. Pure: no side
// effects, safe to call on every cart mutation.
//
// Discounts are clamped so the pre-charge total never goes negative;
// charges are additive and never discounted. The charge for the inactive
// order type is forced to zero regardless of its stored value, so switching
// order type cannot resurrect a stale charge. The payment surcharge only
// exists once payment details are attached and is never folded into Total.
func ComputeTotals(o *Order) Totals {
	t := Totals{
		Subtotal:       decimal.Zero,
		CouponDiscount: decimal.Zero,
		DiscountAmount: decimal.Zero,
		TableCharge:    decimal.Zero,
		DeliveryCharge: decimal.Zero,
		Surcharge:      decimal.Zero,
	}

	for _, item := range o.Items {
		t.Subtotal = t.Subtotal.Add(item.Subtotal)
	}

	t.CouponDiscount = o.Coupon.DiscountOn(o.Items)
	t.DiscountAmount = t.Subtotal.Mul(o.DiscountPct).Div(decimal.NewFromInt(100))

	switch o.Type {
	case OrderDineIn:
		t.TableCharge = o.TableCharge
	case OrderDelivery:
		t.DeliveryCharge = o.DeliveryCharge
	}

	preCharge := t.Subtotal.Sub(t.CouponDiscount).Sub(t.DiscountAmount)
	if preCharge.IsNegative() {
		preCharge = decimal.Zero
	}

	t.Total = preCharge.Add(t.TableCharge).Add(t.DeliveryCharge)

	if o.Payment != nil {
		t.Surcharge = o.Payment.Surcharge(t.Total)
	}
	t.FinalTotal = t.Total.Add(t.Surcharge)
	return t
}
