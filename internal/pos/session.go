// Package pos implements the order composition and stock consistency engine:
// a cashier session holding several concurrently open orders ("tabs")
// against a shared, finite inventory, a deterministic totals calculator,
// and the checkout state machine whose completion step writes the stock
// ledger. Persistence, catalog lookup and tab storage are external
// collaborators consumed through the narrow interfaces below.
package pos

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Inventory is the shared, authoritative stock counter. Reserve is an
// atomic check-and-hold: it either commits the full quantity or returns
// ErrInsufficientStock with no partial effect. Implementations must
// serialize conflicting writers per product.
type Inventory interface {
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	Release(ctx context.Context, productID uuid.UUID, qty int) error
}

// CheckoutSink receives a completed order. PersistOrder must be idempotent
// under retry for the same order id. CommitSale appends one sale ledger
// entry per cart line and advances each product's counter.
type CheckoutSink interface {
	PersistOrder(ctx context.Context, o *Order, t Totals) error
	CommitSale(ctx context.Context, o *Order, t Totals) error
}

// TabStore mirrors the open tabs to durable session state so a reload
// restores them. Plain key-value put/get: losing this state loses open
// tabs but never corrupts the ledger. Load returns (nil, nil) when no
// state exists for the cashier.
type TabStore interface {
	Save(ctx context.Context, cashierID uuid.UUID, st *State) error
	Load(ctx context.Context, cashierID uuid.UUID) (*State, error)
}

// State is the serialized form of a session's open tabs.
type State struct {
	Orders   []*Order  `json:"orders"`
	ActiveID uuid.UUID `json:"active_id"`
	Sequence int       `json:"sequence"`
}

// DefaultOrderName is the display name of the always-present default tab.
const DefaultOrderName = "Live Bill"

// Session is the multi-tab manager for one cashier. All operations are
// serialized under one mutex: cashier actions are UI-triggered and
// effectively sequential, but HTTP retries must not interleave.
type Session struct {
	mu        sync.Mutex
	cashierID uuid.UUID
	orders    []*Order
	activeID  uuid.UUID
	sequence  int

	inv  Inventory
	sink CheckoutSink
	tabs TabStore
	log  zerolog.Logger
}

// NewSession bootstraps a session with a single default order.
func NewSession(ctx context.Context, cashierID uuid.UUID, inv Inventory, sink CheckoutSink, tabs TabStore, log zerolog.Logger) *Session {
	s := &Session{
		cashierID: cashierID,
		inv:       inv,
		sink:      sink,
		tabs:      tabs,
		log:       log.With().Str("cashier_id", cashierID.String()).Logger(),
	}
	s.orders = []*Order{s.newDefaultOrder()}
	s.activeID = s.orders[0].ID
	s.persist(ctx)
	return s
}

// RestoreSession rebuilds a session from previously saved tab state.
// A default order is created if the saved state somehow lacks one.
func RestoreSession(ctx context.Context, cashierID uuid.UUID, st *State, inv Inventory, sink CheckoutSink, tabs TabStore, log zerolog.Logger) *Session {
	s := &Session{
		cashierID: cashierID,
		orders:    st.Orders,
		activeID:  st.ActiveID,
		sequence:  st.Sequence,
		inv:       inv,
		sink:      sink,
		tabs:      tabs,
		log:       log.With().Str("cashier_id", cashierID.String()).Logger(),
	}
	s.ensureDefault()
	if s.byID(s.activeID) == nil && len(s.orders) > 0 {
		s.activeID = s.orders[0].ID
	}
	return s
}

func (s *Session) newDefaultOrder() *Order {
	o := s.blankOrder()
	o.Name = DefaultOrderName
	o.IsDefault = true
	return o
}

func (s *Session) blankOrder() *Order {
	s.sequence++
	return &Order{
		ID:             uuid.New(),
		Name:           fmt.Sprintf("Bill %d", s.sequence),
		CashierID:      s.cashierID,
		Type:           OrderTakeaway,
		TableCharge:    decimal.Zero,
		DeliveryCharge: decimal.Zero,
		DiscountPct:    decimal.Zero,
		Stage:          StageBuilding,
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *Session) byID(id uuid.UUID) *Order {
	for _, o := range s.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// ensureDefault guarantees the invariant that one default order exists.
func (s *Session) ensureDefault() {
	for _, o := range s.orders {
		if o.IsDefault {
			return
		}
	}
	def := s.newDefaultOrder()
	s.orders = append([]*Order{def}, s.orders...)
	if len(s.orders) == 1 {
		s.activeID = def.ID
	}
}

// persist mirrors the tab state to the tab store. Failure is logged, not
// returned: tab storage is outside core correctness and must never block a
// cashier action.
func (s *Session) persist(ctx context.Context) {
	st := &State{Orders: s.orders, ActiveID: s.activeID, Sequence: s.sequence}
	if err := s.tabs.Save(ctx, s.cashierID, st); err != nil {
		s.log.Error().Err(err).Msg("session: failed to save tab state")
	}
}

// ── Order set ────────────────────────────────────────────────────────────────

// NewOrder opens a fresh tab and makes it active. Never fails.
func (s *Session) NewOrder(ctx context.Context) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.blankOrder()
	s.orders = append(s.orders, o)
	s.activeID = o.ID
	s.persist(ctx)
	return o.clone()
}

// DeleteOrder removes a non-default open tab and returns every unit it had
// reserved back to the inventory counter. If the deleted tab was active,
// activation falls back to the first remaining order.
func (s *Session) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(id)
	if o == nil {
		return ErrOrderNotFound
	}
	if o.IsDefault {
		return ErrProtectedOrder
	}

	s.releaseAll(ctx, o)
	s.remove(id)
	s.ensureDefault()
	if s.activeID == id {
		s.activeID = s.orders[0].ID
	}
	s.persist(ctx)
	return nil
}

func (s *Session) remove(id uuid.UUID) {
	for i, o := range s.orders {
		if o.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return
		}
	}
}

// releaseAll returns all reserved stock of an order. Release failures are
// logged and skipped; the reconcile report surfaces the residual hold so
// an operator can clear it.
func (s *Session) releaseAll(ctx context.Context, o *Order) {
	for _, item := range o.Items {
		if err := s.inv.Release(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Error().Err(err).
				Str("order_id", o.ID.String()).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("session: failed to release reserved stock")
		}
	}
}

// SetActive switches the active tab.
func (s *Session) SetActive(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byID(id) == nil {
		return ErrOrderNotFound
	}
	s.activeID = id
	s.persist(ctx)
	return nil
}

// Reorder moves the dragged tab to the target tab's position. Moves that
// involve the default order are silently refused.
func (s *Session) Reorder(ctx context.Context, draggedID, targetID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dragged := s.byID(draggedID)
	target := s.byID(targetID)
	if dragged == nil || target == nil || dragged.IsDefault || target.IsDefault || draggedID == targetID {
		return
	}

	s.remove(draggedID)
	for i, o := range s.orders {
		if o.ID == targetID {
			s.orders = append(s.orders[:i], append([]*Order{dragged}, s.orders[i:]...)...)
			break
		}
	}
	s.persist(ctx)
}

// ActiveID returns the id of the currently active order.
func (s *Session) ActiveID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Orders returns copies of all open orders in display order.
func (s *Session) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.clone())
	}
	return out
}

// Order returns a copy of one open order.
func (s *Session) Order(id uuid.UUID) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(id)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	return o.clone(), nil
}

// ActiveOrder returns a copy of the active order.
func (s *Session) ActiveOrder() (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(s.activeID)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	return o.clone(), nil
}

// Totals recomputes the totals breakdown for one open order.
func (s *Session) Totals(id uuid.UUID) (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(id)
	if o == nil {
		return Totals{}, ErrOrderNotFound
	}
	return ComputeTotals(o), nil
}

// ── Cart mutation & reservation ──────────────────────────────────────────────
// Stock is reserved at cart time, not checkout time: the shared counter is
// decremented synchronously before any increasing mutation commits, so two
// open tabs can never both claim the last unit.

// AddToCart reserves one unit of the product against the live counter and
// adds it to the active order's cart. The unit price is snapshotted from
// the given catalog ref when the line is first created.
func (s *Session) AddToCart(ctx context.Context, p ProductRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(s.activeID)
	if o == nil {
		return ErrOrderNotFound
	}
	if o.Stage != StageBuilding {
		return ErrInvalidTransition
	}

	if err := s.inv.Reserve(ctx, p.ID, 1); err != nil {
		return err
	}

	if it := o.item(p.ID); it != nil {
		it.Quantity++
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	} else {
		o.Items = append(o.Items, CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  1,
			Subtotal:  p.UnitPrice,
		})
	}
	s.persist(ctx)
	return nil
}

// ChangeQuantity adjusts a cart line by delta. Decreases always succeed and
// release stock immediately, deleting the line when it reaches zero.
// Increases go through the same atomic reservation as AddToCart; on failure
// no partial mutation occurs.
func (s *Session) ChangeQuantity(ctx context.Context, productID uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(s.activeID)
	if o == nil {
		return ErrOrderNotFound
	}
	if o.Stage != StageBuilding {
		return ErrInvalidTransition
	}
	it := o.item(productID)
	if it == nil {
		return ErrLineNotFound
	}

	switch {
	case delta > 0:
		if err := s.inv.Reserve(ctx, productID, delta); err != nil {
			return err
		}
		it.Quantity += delta
	case delta < 0:
		release := -delta
		if release > it.Quantity {
			release = it.Quantity
		}
		// A decrease always succeeds locally. When the shared counter is
		// unreachable the release is logged and the hold lingers until an
		// operator clears it; the cart edit itself never blocks.
		if err := s.inv.Release(ctx, productID, release); err != nil {
			s.log.Error().Err(err).
				Str("product_id", productID.String()).
				Int("quantity", release).
				Msg("session: failed to release reserved stock")
		}
		it.Quantity -= release
	default:
		return nil
	}

	if it.Quantity == 0 {
		o.removeItem(productID)
	} else {
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	}
	s.persist(ctx)
	return nil
}

// RemoveFromCart deletes the line entirely and returns its full reserved
// quantity to the inventory counter.
func (s *Session) RemoveFromCart(ctx context.Context, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(s.activeID)
	if o == nil {
		return ErrOrderNotFound
	}
	if o.Stage != StageBuilding {
		return ErrInvalidTransition
	}
	it := o.item(productID)
	if it == nil {
		return ErrLineNotFound
	}

	// Like a quantity decrease, removal never blocks on the shared counter.
	if err := s.inv.Release(ctx, productID, it.Quantity); err != nil {
		s.log.Error().Err(err).
			Str("product_id", productID.String()).
			Int("quantity", it.Quantity).
			Msg("session: failed to release reserved stock")
	}
	o.removeItem(productID)
	s.persist(ctx)
	return nil
}

// ── Order detail edits ───────────────────────────────────────────────────────
// These touch only local order state and never block.

func (s *Session) SetOrderType(ctx context.Context, t OrderType) error {
	return s.editActive(ctx, func(o *Order) error {
		switch t {
		case OrderDineIn, OrderTakeaway, OrderDelivery:
			o.Type = t
			return nil
		default:
			return fmt.Errorf("unknown order type %q", t)
		}
	})
}

func (s *Session) SetTableCharge(ctx context.Context, charge decimal.Decimal) error {
	return s.editActive(ctx, func(o *Order) error {
		if charge.IsNegative() {
			return fmt.Errorf("table charge cannot be negative")
		}
		o.TableCharge = charge
		return nil
	})
}

func (s *Session) SetDeliveryCharge(ctx context.Context, charge decimal.Decimal) error {
	return s.editActive(ctx, func(o *Order) error {
		if charge.IsNegative() {
			return fmt.Errorf("delivery charge cannot be negative")
		}
		o.DeliveryCharge = charge
		return nil
	})
}

func (s *Session) SetDiscount(ctx context.Context, pct decimal.Decimal) error {
	return s.editActive(ctx, func(o *Order) error {
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("discount must be between 0 and 100")
		}
		o.DiscountPct = pct
		return nil
	})
}

// ApplyCoupon attaches a coupon to the active order, replacing any coupon
// already applied — an order never carries more than one.
func (s *Session) ApplyCoupon(ctx context.Context, c Coupon) error {
	return s.editActive(ctx, func(o *Order) error {
		o.Coupon = &c
		return nil
	})
}

func (s *Session) RemoveCoupon(ctx context.Context) error {
	return s.editActive(ctx, func(o *Order) error {
		o.Coupon = nil
		return nil
	})
}

func (s *Session) SetKitchenNote(ctx context.Context, note string) error {
	return s.editActive(ctx, func(o *Order) error {
		o.KitchenNote = note
		return nil
	})
}

func (s *Session) AssignCustomer(ctx context.Context, customerID *uuid.UUID) error {
	return s.editActive(ctx, func(o *Order) error {
		o.CustomerID = customerID
		return nil
	})
}

func (s *Session) editActive(ctx context.Context, fn func(o *Order) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(s.activeID)
	if o == nil {
		return ErrOrderNotFound
	}
	if err := fn(o); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}
