package pos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func orderWithItems(items ...CartItem) *Order {
	return &Order{
		ID:             uuid.New(),
		Name:           "Bill 1",
		Items:          items,
		Type:           OrderTakeaway,
		TableCharge:    decimal.Zero,
		DeliveryCharge: decimal.Zero,
		DiscountPct:    decimal.Zero,
		Stage:          StageBuilding,
	}
}

func line(price float64, qty int) CartItem {
	p := decimal.NewFromFloat(price)
	return CartItem{
		ProductID: uuid.New(),
		Name:      "item",
		UnitPrice: p,
		Quantity:  qty,
		Subtotal:  p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestComputeTotals_EmptyOrder(t *testing.T) {
	tt := ComputeTotals(orderWithItems())

	assert.Equal(t, "0", tt.Subtotal.String())
	assert.Equal(t, "0", tt.Total.String())
	assert.Equal(t, "0", tt.FinalTotal.String())
}

func TestComputeTotals_DineInFullBreakdown(t *testing.T) {
	o := orderWithItems(line(100, 3), line(50, 4)) // subtotal 500
	o.Type = OrderDineIn
	o.TableCharge = decimal.NewFromInt(40)
	o.DeliveryCharge = decimal.NewFromInt(60) // stored but must not apply
	o.DiscountPct = decimal.NewFromInt(5)
	o.Coupon = &Coupon{Code: "TEN", Type: CouponPercentage, Value: decimal.NewFromInt(10)}

	tt := ComputeTotals(o)

	assert.Equal(t, "500", tt.Subtotal.String())
	assert.Equal(t, "50", tt.CouponDiscount.String())
	assert.Equal(t, "25", tt.DiscountAmount.String())
	assert.Equal(t, "40", tt.TableCharge.String())
	assert.Equal(t, "0", tt.DeliveryCharge.String())
	assert.Equal(t, "465", tt.Total.String()) // 500 - 50 - 25 + 40
	assert.Equal(t, "465", tt.FinalTotal.String())
}

func TestComputeTotals_DineInWithTableCharge(t *testing.T) {
	o := orderWithItems(line(100, 5)) // subtotal 500
	o.Type = OrderDineIn
	o.TableCharge = decimal.NewFromInt(50)
	o.DiscountPct = decimal.NewFromInt(10)

	tt := ComputeTotals(o)

	assert.Equal(t, "50", tt.DiscountAmount.String())
	assert.Equal(t, "500", tt.Total.String()) // 500 - 50 + 50
}

func TestComputeTotals_DeliveryZeroesTableCharge(t *testing.T) {
	o := orderWithItems(line(200, 1))
	o.Type = OrderDelivery
	o.TableCharge = decimal.NewFromInt(40)
	o.DeliveryCharge = decimal.NewFromInt(35)

	tt := ComputeTotals(o)

	assert.Equal(t, "0", tt.TableCharge.String())
	assert.Equal(t, "35", tt.DeliveryCharge.String())
	assert.Equal(t, "235", tt.Total.String())
}

func TestComputeTotals_TargetedCouponOnlyDiscountsItsLines(t *testing.T) {
	targeted := line(100, 2) // 200 applicable
	other := line(300, 1)
	o := orderWithItems(targeted, other)
	o.Coupon = &Coupon{
		Code:       "PROMO",
		Type:       CouponPercentage,
		Value:      decimal.NewFromInt(50),
		ProductIDs: []uuid.UUID{targeted.ProductID},
	}

	tt := ComputeTotals(o)

	assert.Equal(t, "100", tt.CouponDiscount.String()) // 50% of 200 only
	assert.Equal(t, "400", tt.Total.String())
}

func TestComputeTotals_FixedCouponCappedAtApplicableSubtotal(t *testing.T) {
	o := orderWithItems(line(80, 1))
	o.Coupon = &Coupon{Code: "BIG", Type: CouponFixed, Value: decimal.NewFromInt(500)}

	tt := ComputeTotals(o)

	assert.Equal(t, "80", tt.CouponDiscount.String())
	assert.Equal(t, "0", tt.Total.String())
}

func TestComputeTotals_ChargesSurviveFullDiscount(t *testing.T) {
	// Discounts can zero out the item total but never eat the charges.
	o := orderWithItems(line(100, 1))
	o.Type = OrderDineIn
	o.TableCharge = decimal.NewFromInt(30)
	o.DiscountPct = decimal.NewFromInt(100)
	o.Coupon = &Coupon{Code: "ALL", Type: CouponFixed, Value: decimal.NewFromInt(100)}

	tt := ComputeTotals(o)

	assert.False(t, tt.Total.IsNegative())
	assert.Equal(t, "30", tt.Total.String())
}

func TestComputeTotals_SurchargeOnlyWithPaymentAttached(t *testing.T) {
	o := orderWithItems(line(400, 1))

	before := ComputeTotals(o)
	assert.Equal(t, "0", before.Surcharge.String())
	assert.Equal(t, before.Total.String(), before.FinalTotal.String())

	o.Payment = &CardPayment{InvoiceID: "INV-1", Issuer: "Visa", SurchargeRate: decimal.NewFromFloat(2.5)}
	after := ComputeTotals(o)
	assert.Equal(t, "10", after.Surcharge.String()) // 2.5% of 400
	assert.Equal(t, "400", after.Total.String())    // surcharge never folded in
	assert.Equal(t, "410", after.FinalTotal.String())
}

func TestComputeTotals_CashPaymentCarriesNoSurcharge(t *testing.T) {
	o := orderWithItems(line(400, 1))
	o.Payment = &CashPayment{Given: decimal.NewFromInt(500)}

	tt := ComputeTotals(o)
	assert.Equal(t, "0", tt.Surcharge.String())
	assert.Equal(t, "400", tt.FinalTotal.String())
}

func TestComputeTotals_Deterministic(t *testing.T) {
	o := orderWithItems(line(99.99, 3), line(12.5, 2))
	o.DiscountPct = decimal.NewFromFloat(7.5)
	o.Coupon = &Coupon{Code: "X", Type: CouponFixed, Value: decimal.NewFromInt(20)}

	first := ComputeTotals(o)
	second := ComputeTotals(o)

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.Equal(t, first.FinalTotal.String(), second.FinalTotal.String())
}
