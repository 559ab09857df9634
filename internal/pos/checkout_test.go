package pos

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashFor(amount int64) *CashPayment {
	return &CashPayment{Given: decimal.NewFromInt(amount)}
}

// readyHarness returns a harness whose active order holds one 400-unit line
// and sits in the given stage.
func readyHarness(t *testing.T, stage Stage) *sessionHarness {
	t.Helper()
	h := newHarness(t)
	ctx := context.Background()
	ref := h.product(t, 400, 10)
	require.NoError(t, h.session.AddToCart(ctx, ref))

	id := h.session.ActiveID()
	if stage == StageCheckout || stage == StagePayment {
		require.NoError(t, h.session.OpenCheckout(ctx, id))
	}
	if stage == StagePayment {
		require.NoError(t, h.session.SetPayment(ctx, id, cashFor(500)))
	}
	return h
}

// ── Transitions ──────────────────────────────────────────────────────────────

func TestOpenCheckout_RequiresNonEmptyCart(t *testing.T) {
	h := newHarness(t)

	err := h.session.OpenCheckout(context.Background(), h.session.ActiveID())
	assert.ErrorIs(t, err, ErrEmptyCart)

	o, _ := h.session.ActiveOrder()
	assert.Equal(t, StageBuilding, o.Stage)
}

func TestOpenCheckout_OnlyFromBuilding(t *testing.T) {
	h := readyHarness(t, StageCheckout)

	err := h.session.OpenCheckout(context.Background(), h.session.ActiveID())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelCheckout_ReturnsToBuildingAndDiscardsPayment(t *testing.T) {
	h := readyHarness(t, StagePayment)
	ctx := context.Background()
	id := h.session.ActiveID()

	// payment → checkout is not a legal cancel; step back via checkout.
	o, _ := h.session.Order(id)
	require.Equal(t, StagePayment, o.Stage)
	assert.ErrorIs(t, h.session.CancelCheckout(ctx, id), ErrInvalidTransition)

	h2 := readyHarness(t, StageCheckout)
	id2 := h2.session.ActiveID()
	require.NoError(t, h2.session.CancelCheckout(ctx, id2))
	o2, _ := h2.session.Order(id2)
	assert.Equal(t, StageBuilding, o2.Stage)
	assert.Nil(t, o2.Payment)
}

func TestCancelCheckout_NotFromBuilding(t *testing.T) {
	h := readyHarness(t, StageBuilding)

	err := h.session.CancelCheckout(context.Background(), h.session.ActiveID())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// ── Payment capture ──────────────────────────────────────────────────────────

func TestSetPayment_CashUnderpaymentLeavesStageUntouched(t *testing.T) {
	h := readyHarness(t, StageCheckout)
	id := h.session.ActiveID()

	err := h.session.SetPayment(context.Background(), id, cashFor(300)) // total is 400
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	o, _ := h.session.Order(id)
	assert.Equal(t, StageCheckout, o.Stage)
	assert.Nil(t, o.Payment)
}

func TestSetPayment_OneCentShortIsStillShort(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.product(t, 100.00, 5)
	require.NoError(t, h.session.AddToCart(ctx, ref))
	id := h.session.ActiveID()
	require.NoError(t, h.session.OpenCheckout(ctx, id))

	err := h.session.SetPayment(ctx, id, &CashPayment{Given: decimal.NewFromFloat(99.99)})
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	o, _ := h.session.Order(id)
	assert.Equal(t, StageCheckout, o.Stage)
	assert.Equal(t, 1, o.Items[0].Quantity)
}

func TestSetPayment_CardRequiresInvoiceAndIssuer(t *testing.T) {
	h := readyHarness(t, StageCheckout)
	id := h.session.ActiveID()

	err := h.session.SetPayment(context.Background(), id, &CardPayment{Issuer: "Visa"})
	assert.ErrorIs(t, err, ErrIncompletePaymentDetails)

	err = h.session.SetPayment(context.Background(), id, &CardPayment{InvoiceID: "INV-9"})
	assert.ErrorIs(t, err, ErrIncompletePaymentDetails)
}

func TestSetPayment_CashValidatedAgainstSurchargedTotal(t *testing.T) {
	h := readyHarness(t, StageCheckout)
	id := h.session.ActiveID()

	card := &CardPayment{InvoiceID: "INV-1", Issuer: "Visa", SurchargeRate: decimal.NewFromFloat(2.5)}
	require.NoError(t, h.session.SetPayment(context.Background(), id, card))

	o, _ := h.session.Order(id)
	assert.Equal(t, StagePayment, o.Stage)

	tt, err := h.session.Totals(id)
	require.NoError(t, err)
	assert.Equal(t, "410", tt.FinalTotal.String())
}

func TestSetPayment_ReplaceableWhileInPaymentStage(t *testing.T) {
	h := readyHarness(t, StagePayment)
	id := h.session.ActiveID()

	require.NoError(t, h.session.SetPayment(context.Background(), id, cashFor(1000)))

	o, _ := h.session.Order(id)
	cash, ok := o.Payment.(*CashPayment)
	require.True(t, ok)
	assert.Equal(t, "1000", cash.Given.String())
	assert.Equal(t, StagePayment, o.Stage)
}

func TestSetPayment_OnlyFromCheckoutOrPayment(t *testing.T) {
	h := readyHarness(t, StageBuilding)

	err := h.session.SetPayment(context.Background(), h.session.ActiveID(), cashFor(1000))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// ── Completion ───────────────────────────────────────────────────────────────

func TestComplete_HappyPath(t *testing.T) {
	h := readyHarness(t, StagePayment)
	id := h.session.ActiveID()

	completion, err := h.session.Complete(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, completion)

	assert.Equal(t, StageCompleted, completion.Order.Stage)
	assert.Equal(t, "400", completion.Totals.FinalTotal.String())
	assert.Equal(t, "100", completion.Change.String()) // paid 500

	require.Len(t, h.sink.persisted, 1)
	require.Len(t, h.sink.committed, 1)
	assert.Equal(t, id, h.sink.persisted[0].ID)

	// The completed order left the set and a fresh default replaced it.
	orders := h.session.Orders()
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsDefault)
	assert.NotEqual(t, id, orders[0].ID)
	assert.Empty(t, orders[0].Items)
}

func TestComplete_RequiresPaymentStage(t *testing.T) {
	h := readyHarness(t, StageCheckout)

	_, err := h.session.Complete(context.Background(), h.session.ActiveID())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComplete_PersistFailureRevertsToPaymentStage(t *testing.T) {
	h := readyHarness(t, StagePayment)
	h.sink.failPersist = errors.New("db down")
	id := h.session.ActiveID()

	completion, err := h.session.Complete(context.Background(), id)
	assert.Error(t, err)
	assert.Nil(t, completion)

	// Order stays in the set, in payment stage, ready for retry.
	o, getErr := h.session.Order(id)
	require.NoError(t, getErr)
	assert.Equal(t, StagePayment, o.Stage)
	assert.Empty(t, h.sink.committed)
}

func TestComplete_LedgerFailureStillReturnsCompletion(t *testing.T) {
	h := readyHarness(t, StagePayment)
	h.sink.failCommit = errors.New("ledger write refused")
	id := h.session.ActiveID()

	completion, err := h.session.Complete(context.Background(), id)

	var ledgerErr *LedgerWriteError
	require.ErrorAs(t, err, &ledgerErr)
	assert.Equal(t, id, ledgerErr.OrderID)

	// The order record was persisted, so completion is handed back anyway.
	require.NotNil(t, completion)
	assert.Equal(t, StageCompleted, completion.Order.Stage)
	require.Len(t, h.sink.persisted, 1)

	// And the order is gone from the set — it did complete.
	_, getErr := h.session.Order(id)
	assert.ErrorIs(t, getErr, ErrOrderNotFound)
}

func TestComplete_LedgerFailureReleasesReservedStock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.product(t, 400, 10)
	require.NoError(t, h.session.AddToCart(ctx, ref))
	require.NoError(t, h.session.ChangeQuantity(ctx, ref.ID, 1)) // two units held

	id := h.session.ActiveID()
	require.NoError(t, h.session.OpenCheckout(ctx, id))
	require.NoError(t, h.session.SetPayment(ctx, id, cashFor(900)))
	h.sink.failCommit = errors.New("ledger write refused")

	completion, err := h.session.Complete(ctx, id)

	var ledgerErr *LedgerWriteError
	require.ErrorAs(t, err, &ledgerErr)
	require.NotNil(t, completion)

	// The failed sale never consumed the holds, so they must not outlive
	// the order they belonged to.
	assert.Equal(t, 0, h.inv.reservedFor(ref.ID))
	assert.Equal(t, 10, h.inv.availableFor(ref.ID))
}

func TestComplete_RevalidatesPaymentAgainstCurrentTotal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.product(t, 400, 10)
	require.NoError(t, h.session.AddToCart(ctx, ref))
	id := h.session.ActiveID()
	require.NoError(t, h.session.OpenCheckout(ctx, id))
	require.NoError(t, h.session.SetPayment(ctx, id, cashFor(400)))

	// Raise the total after payment was captured: exact cash no longer covers.
	require.NoError(t, h.session.SetOrderType(ctx, OrderDineIn))
	require.NoError(t, h.session.SetTableCharge(ctx, decimal.NewFromInt(50)))

	_, err := h.session.Complete(ctx, id)
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	o, _ := h.session.Order(id)
	assert.Equal(t, StagePayment, o.Stage)
}

func TestComplete_NonDefaultTabDoesNotSpawnExtraDefault(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.product(t, 100, 10)

	tab := h.session.NewOrder(ctx)
	require.NoError(t, h.session.AddToCart(ctx, ref))
	require.NoError(t, h.session.OpenCheckout(ctx, tab.ID))
	require.NoError(t, h.session.SetPayment(ctx, tab.ID, cashFor(100)))

	_, err := h.session.Complete(ctx, tab.ID)
	require.NoError(t, err)

	orders := h.session.Orders()
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsDefault)
	assert.Equal(t, orders[0].ID, h.session.ActiveID())
}
