package pos

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderDineIn   OrderType = "dine_in"
	OrderTakeaway OrderType = "takeaway"
	OrderDelivery OrderType = "delivery"
)

// Stage is the checkout state of an order. Legal transitions:
//
//	building → checkout → payment → completed
//	building ← checkout                       (cancel)
//
// Completion is terminal and the only transition with durable side effects.
type Stage string

const (
	StageBuilding  Stage = "building"
	StageCheckout  Stage = "checkout"
	StagePayment   Stage = "payment"
	StageCompleted Stage = "completed"
)

// CartItem is one line of an order. UnitPrice is snapshotted when the line
// is created so later catalog price edits do not reprice open carts.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ProductRef is the catalog snapshot needed to open a cart line.
type ProductRef struct {
	ID        uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
}

// Order is one in-progress bill ("tab"). The session owns it exclusively
// until completion hands it off to the order store.
type Order struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Items          []CartItem      `json:"items"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	CashierID      uuid.UUID       `json:"cashier_id"`
	Type           OrderType       `json:"type"`
	TableCharge    decimal.Decimal `json:"table_charge"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	Coupon         *Coupon         `json:"coupon,omitempty"`
	KitchenNote    string          `json:"kitchen_note"`
	Payment        Payment         `json:"-"`
	Stage          Stage           `json:"stage"`
	IsDefault      bool            `json:"is_default"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (o *Order) item(productID uuid.UUID) *CartItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// ReservedQuantity returns how many units of a product this order holds.
func (o *Order) ReservedQuantity(productID uuid.UUID) int {
	if it := o.item(productID); it != nil {
		return it.Quantity
	}
	return 0
}

func (o *Order) removeItem(productID uuid.UUID) {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return
		}
	}
}

// clone returns a deep copy safe to hand outside the session lock.
func (o *Order) clone() Order {
	c := *o
	c.Items = append([]CartItem(nil), o.Items...)
	if o.Coupon != nil {
		cp := *o.Coupon
		cp.ProductIDs = append([]uuid.UUID(nil), o.Coupon.ProductIDs...)
		c.Coupon = &cp
	}
	if o.CustomerID != nil {
		id := *o.CustomerID
		c.CustomerID = &id
	}
	return c
}

// orderJSON flattens the Payment interface into a tagged envelope so open
// tabs survive a round trip through the tab store.
type orderJSON struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Items          []CartItem       `json:"items"`
	CustomerID     *uuid.UUID       `json:"customer_id,omitempty"`
	CashierID      uuid.UUID        `json:"cashier_id"`
	Type           OrderType        `json:"type"`
	TableCharge    decimal.Decimal  `json:"table_charge"`
	DeliveryCharge decimal.Decimal  `json:"delivery_charge"`
	DiscountPct    decimal.Decimal  `json:"discount_pct"`
	Coupon         *Coupon          `json:"coupon,omitempty"`
	KitchenNote    string           `json:"kitchen_note"`
	Payment        *paymentEnvelope `json:"payment,omitempty"`
	Stage          Stage            `json:"stage"`
	IsDefault      bool             `json:"is_default"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		ID:             o.ID,
		Name:           o.Name,
		Items:          o.Items,
		CustomerID:     o.CustomerID,
		CashierID:      o.CashierID,
		Type:           o.Type,
		TableCharge:    o.TableCharge,
		DeliveryCharge: o.DeliveryCharge,
		DiscountPct:    o.DiscountPct,
		Coupon:         o.Coupon,
		KitchenNote:    o.KitchenNote,
		Payment:        wrapPayment(o.Payment),
		Stage:          o.Stage,
		IsDefault:      o.IsDefault,
		CreatedAt:      o.CreatedAt,
	})
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payment, err := raw.Payment.unwrap()
	if err != nil {
		return err
	}
	*o = Order{
		ID:             raw.ID,
		Name:           raw.Name,
		Items:          raw.Items,
		CustomerID:     raw.CustomerID,
		CashierID:      raw.CashierID,
		Type:           raw.Type,
		TableCharge:    raw.TableCharge,
		DeliveryCharge: raw.DeliveryCharge,
		DiscountPct:    raw.DiscountPct,
		Coupon:         raw.Coupon,
		KitchenNote:    raw.KitchenNote,
		Payment:        payment,
		Stage:          raw.Stage,
		IsDefault:      raw.IsDefault,
		CreatedAt:      raw.CreatedAt,
	}
	return nil
}
