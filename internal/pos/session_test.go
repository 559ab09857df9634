package pos

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory Inventory stub ─────────────────────────────────────────────────

type stubInventory struct {
	mu          sync.Mutex
	available   map[uuid.UUID]int
	reserved    map[uuid.UUID]int
	failRelease error
}

func newStubInventory() *stubInventory {
	return &stubInventory{
		available: make(map[uuid.UUID]int),
		reserved:  make(map[uuid.UUID]int),
	}
}

func (s *stubInventory) stock(id uuid.UUID, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available[id] = qty
}

func (s *stubInventory) Reserve(_ context.Context, productID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.available[productID] < qty {
		return ErrInsufficientStock
	}
	s.available[productID] -= qty
	s.reserved[productID] += qty
	return nil
}

func (s *stubInventory) Release(_ context.Context, productID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRelease != nil {
		return s.failRelease
	}
	s.available[productID] += qty
	s.reserved[productID] -= qty
	return nil
}

func (s *stubInventory) availableFor(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available[id]
}

func (s *stubInventory) reservedFor(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserved[id]
}

// ── CheckoutSink stub ────────────────────────────────────────────────────────

type stubSink struct {
	persisted   []Order
	committed   []Order
	failPersist error
	failCommit  error
}

func (s *stubSink) PersistOrder(_ context.Context, o *Order, _ Totals) error {
	if s.failPersist != nil {
		return s.failPersist
	}
	s.persisted = append(s.persisted, o.clone())
	return nil
}

func (s *stubSink) CommitSale(_ context.Context, o *Order, _ Totals) error {
	if s.failCommit != nil {
		return s.failCommit
	}
	s.committed = append(s.committed, o.clone())
	return nil
}

// ── TabStore stub ────────────────────────────────────────────────────────────
// Round-trips through JSON so saved tabs go through the same serialization
// as the real store.

type stubTabStore struct {
	mu       sync.Mutex
	states   map[uuid.UUID][]byte
	failSave error
}

func newStubTabStore() *stubTabStore {
	return &stubTabStore{states: make(map[uuid.UUID][]byte)}
}

func (s *stubTabStore) Save(_ context.Context, cashierID uuid.UUID, st *State) error {
	if s.failSave != nil {
		return s.failSave
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[cashierID] = raw
	return nil
}

func (s *stubTabStore) Load(_ context.Context, cashierID uuid.UUID) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.states[cashierID]
	if !ok {
		return nil, nil
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ── Harness ──────────────────────────────────────────────────────────────────

type sessionHarness struct {
	session *Session
	inv     *stubInventory
	sink    *stubSink
	tabs    *stubTabStore
	cashier uuid.UUID
}

func newHarness(t *testing.T) *sessionHarness {
	t.Helper()
	inv := newStubInventory()
	sink := &stubSink{}
	tabs := newStubTabStore()
	cashier := uuid.New()
	return &sessionHarness{
		session: NewSession(context.Background(), cashier, inv, sink, tabs, zerolog.Nop()),
		inv:     inv,
		sink:    sink,
		tabs:    tabs,
		cashier: cashier,
	}
}

func (h *sessionHarness) product(t *testing.T, price float64, stock int) ProductRef {
	t.Helper()
	ref := ProductRef{ID: uuid.New(), Name: "widget", UnitPrice: decimal.NewFromFloat(price)}
	h.inv.stock(ref.ID, stock)
	return ref
}

// ── Order set ────────────────────────────────────────────────────────────────

func TestSession_StartsWithDefaultOrder(t *testing.T) {
	h := newHarness(t)

	orders := h.session.Orders()
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsDefault)
	assert.Equal(t, DefaultOrderName, orders[0].Name)
	assert.Equal(t, orders[0].ID, h.session.ActiveID())
}

func TestSession_NewOrderBecomesActive(t *testing.T) {
	h := newHarness(t)

	o := h.session.NewOrder(context.Background())

	assert.Equal(t, o.ID, h.session.ActiveID())
	assert.False(t, o.IsDefault)
	assert.Len(t, h.session.Orders(), 2)
}

func TestSession_DeleteDefaultOrderRejected(t *testing.T) {
	h := newHarness(t)

	err := h.session.DeleteOrder(context.Background(), h.session.ActiveID())
	assert.ErrorIs(t, err, ErrProtectedOrder)
	assert.Len(t, h.session.Orders(), 1)
}

func TestSession_DeleteOrderReleasesReservedStock(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 100, 5)

	o := h.session.NewOrder(context.Background())
	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	require.Equal(t, 3, h.inv.availableFor(ref.ID))

	require.NoError(t, h.session.DeleteOrder(context.Background(), o.ID))

	assert.Equal(t, 5, h.inv.availableFor(ref.ID))
	assert.Equal(t, 0, h.inv.reservedFor(ref.ID))
	// activation falls back to a remaining order
	assert.NotEqual(t, o.ID, h.session.ActiveID())
}

func TestSession_DeleteUnknownOrder(t *testing.T) {
	h := newHarness(t)

	err := h.session.DeleteOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSession_ReorderIgnoresDefault(t *testing.T) {
	h := newHarness(t)
	def := h.session.Orders()[0]
	b := h.session.NewOrder(context.Background())
	c := h.session.NewOrder(context.Background())

	h.session.Reorder(context.Background(), def.ID, c.ID)
	orders := h.session.Orders()
	assert.Equal(t, def.ID, orders[0].ID) // unchanged

	h.session.Reorder(context.Background(), c.ID, b.ID)
	orders = h.session.Orders()
	assert.Equal(t, c.ID, orders[1].ID)
	assert.Equal(t, b.ID, orders[2].ID)
}

// ── Cart mutation & reservation ──────────────────────────────────────────────

func TestAddToCart_ReservesStockAndSnapshotsPrice(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 150, 3)

	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	require.NoError(t, h.session.AddToCart(context.Background(), ref))

	o, err := h.session.ActiveOrder()
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "300", o.Items[0].Subtotal.String())
	assert.Equal(t, 1, h.inv.availableFor(ref.ID))
	assert.Equal(t, 2, h.inv.reservedFor(ref.ID))
}

func TestAddToCart_LastUnitCannotBeClaimedTwice(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 100, 1)

	// Tab A takes the last unit.
	require.NoError(t, h.session.AddToCart(context.Background(), ref))

	// Tab B tries the same product.
	h.session.NewOrder(context.Background())
	err := h.session.AddToCart(context.Background(), ref)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	o, _ := h.session.ActiveOrder()
	assert.Empty(t, o.Items) // no partial line
}

func TestChangeQuantity_IncreaseFailsWithoutPartialMutation(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 100, 2)

	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	err := h.session.ChangeQuantity(context.Background(), ref.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	o, _ := h.session.ActiveOrder()
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, 1, h.inv.availableFor(ref.ID))
}

func TestChangeQuantity_DecreaseReleasesAndDropsLineAtZero(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 100, 5)

	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	require.NoError(t, h.session.ChangeQuantity(context.Background(), ref.ID, 2))

	require.NoError(t, h.session.ChangeQuantity(context.Background(), ref.ID, -1))
	o, _ := h.session.ActiveOrder()
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "200", o.Items[0].Subtotal.String())

	// Over-decrement clamps at zero and removes the line.
	require.NoError(t, h.session.ChangeQuantity(context.Background(), ref.ID, -10))
	o, _ = h.session.ActiveOrder()
	assert.Empty(t, o.Items)
	assert.Equal(t, 5, h.inv.availableFor(ref.ID))
}

func TestChangeQuantity_DecreaseSucceedsWhenInventoryUnreachable(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 100, 5)
	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	require.NoError(t, h.session.ChangeQuantity(context.Background(), ref.ID, 2))

	// The shared counter goes away; shrinking the line must still work.
	h.inv.failRelease = errors.New("redis: connection refused")

	require.NoError(t, h.session.ChangeQuantity(context.Background(), ref.ID, -2))
	o, _ := h.session.ActiveOrder()
	require.Len(t, o.Items, 1)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, "100", o.Items[0].Subtotal.String())

	// Removal is a decrease too.
	require.NoError(t, h.session.RemoveFromCart(context.Background(), ref.ID))
	o, _ = h.session.ActiveOrder()
	assert.Empty(t, o.Items)
}

func TestChangeQuantity_UnknownLine(t *testing.T) {
	h := newHarness(t)

	err := h.session.ChangeQuantity(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveFromCart_ReleasesFullQuantity(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 100, 4)

	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	require.NoError(t, h.session.ChangeQuantity(context.Background(), ref.ID, 2))
	require.Equal(t, 1, h.inv.availableFor(ref.ID))

	require.NoError(t, h.session.RemoveFromCart(context.Background(), ref.ID))
	o, _ := h.session.ActiveOrder()
	assert.Empty(t, o.Items)
	assert.Equal(t, 4, h.inv.availableFor(ref.ID))
}

func TestCartMutation_LockedOutsideBuildingStage(t *testing.T) {
	h := newHarness(t)
	ref := h.product(t, 100, 5)
	require.NoError(t, h.session.AddToCart(context.Background(), ref))
	require.NoError(t, h.session.OpenCheckout(context.Background(), h.session.ActiveID()))

	assert.ErrorIs(t, h.session.AddToCart(context.Background(), ref), ErrInvalidTransition)
	assert.ErrorIs(t, h.session.ChangeQuantity(context.Background(), ref.ID, 1), ErrInvalidTransition)
	assert.ErrorIs(t, h.session.RemoveFromCart(context.Background(), ref.ID), ErrInvalidTransition)
}

// ── Order detail edits ───────────────────────────────────────────────────────

func TestSession_DetailEdits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.session.SetOrderType(ctx, OrderDineIn))
	require.NoError(t, h.session.SetTableCharge(ctx, decimal.NewFromInt(40)))
	require.NoError(t, h.session.SetDiscount(ctx, decimal.NewFromInt(10)))
	require.NoError(t, h.session.SetKitchenNote(ctx, "no onions"))

	customerID := uuid.New()
	require.NoError(t, h.session.AssignCustomer(ctx, &customerID))

	o, err := h.session.ActiveOrder()
	require.NoError(t, err)
	assert.Equal(t, OrderDineIn, o.Type)
	assert.Equal(t, "40", o.TableCharge.String())
	assert.Equal(t, "10", o.DiscountPct.String())
	assert.Equal(t, "no onions", o.KitchenNote)
	require.NotNil(t, o.CustomerID)
	assert.Equal(t, customerID, *o.CustomerID)

	assert.Error(t, h.session.SetDiscount(ctx, decimal.NewFromInt(101)))
	assert.Error(t, h.session.SetTableCharge(ctx, decimal.NewFromInt(-1)))
	assert.Error(t, h.session.SetOrderType(ctx, OrderType("drive_through")))
}

func TestSession_ApplyCouponReplacesExisting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.session.ApplyCoupon(ctx, Coupon{Code: "A", Type: CouponFixed, Value: decimal.NewFromInt(10)}))
	require.NoError(t, h.session.ApplyCoupon(ctx, Coupon{Code: "B", Type: CouponFixed, Value: decimal.NewFromInt(20)}))

	o, _ := h.session.ActiveOrder()
	require.NotNil(t, o.Coupon)
	assert.Equal(t, "B", o.Coupon.Code)

	require.NoError(t, h.session.RemoveCoupon(ctx))
	o, _ = h.session.ActiveOrder()
	assert.Nil(t, o.Coupon)
}

// ── Persistence round trip ───────────────────────────────────────────────────

func TestSession_RestoreRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.product(t, 250, 10)

	require.NoError(t, h.session.AddToCart(ctx, ref))
	tab := h.session.NewOrder(ctx)
	require.NoError(t, h.session.AddToCart(ctx, ref))
	require.NoError(t, h.session.OpenCheckout(ctx, tab.ID))
	require.NoError(t, h.session.SetPayment(ctx, tab.ID, &CashPayment{Given: decimal.NewFromInt(300)}))

	st, err := h.tabs.Load(ctx, h.cashier)
	require.NoError(t, err)
	require.NotNil(t, st)

	restored := RestoreSession(ctx, h.cashier, st, h.inv, h.sink, h.tabs, zerolog.Nop())

	orders := restored.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, tab.ID, restored.ActiveID())

	got, err := restored.Order(tab.ID)
	require.NoError(t, err)
	assert.Equal(t, StagePayment, got.Stage)
	require.NotNil(t, got.Payment)
	cash, ok := got.Payment.(*CashPayment)
	require.True(t, ok)
	assert.Equal(t, "300", cash.Given.String())
}

func TestSession_RestoreRecreatesMissingDefault(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	o := h.session.blankOrder()
	st := &State{Orders: []*Order{o}, ActiveID: o.ID, Sequence: 1}

	restored := RestoreSession(ctx, h.cashier, st, h.inv, h.sink, h.tabs, zerolog.Nop())

	orders := restored.Orders()
	require.Len(t, orders, 2)
	assert.True(t, orders[0].IsDefault)
	assert.Equal(t, o.ID, restored.ActiveID())
}

func TestSession_TabStoreFailureNeverBlocksCashier(t *testing.T) {
	h := newHarness(t)
	h.tabs.failSave = errors.New("redis down")
	ref := h.product(t, 100, 5)

	assert.NoError(t, h.session.AddToCart(context.Background(), ref))
}
