package pos

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Completion is the result handed back when an order leaves the session.
type Completion struct {
	Order  Order           `json:"order"`
	Totals Totals          `json:"totals"`
	Change decimal.Decimal `json:"change"`
}

// OpenCheckout closes the cart for editing: building → checkout.
// Requires a non-empty cart.
func (s *Session) OpenCheckout(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(id)
	if o == nil {
		return ErrOrderNotFound
	}
	if o.Stage != StageBuilding {
		return ErrInvalidTransition
	}
	if len(o.Items) == 0 {
		return ErrEmptyCart
	}
	o.Stage = StageCheckout
	s.persist(ctx)
	return nil
}

// CancelCheckout returns an order to editing: checkout → building.
// Any payment details captured so far are discarded.
func (s *Session) CancelCheckout(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(id)
	if o == nil {
		return ErrOrderNotFound
	}
	if o.Stage != StageCheckout {
		return ErrInvalidTransition
	}
	o.Payment = nil
	o.Stage = StageBuilding
	s.persist(ctx)
	return nil
}

// SetPayment captures payment details: checkout → payment. Calling it again
// while in the payment stage replaces the details without a transition.
// The variant's mandatory fields are validated against the current total;
// on rejection the stage and stored payment are untouched.
func (s *Session) SetPayment(ctx context.Context, id uuid.UUID, p Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(id)
	if o == nil {
		return ErrOrderNotFound
	}
	if o.Stage != StageCheckout && o.Stage != StagePayment {
		return ErrInvalidTransition
	}

	t := ComputeTotals(o)
	if err := p.Validate(t.Total.Add(p.Surcharge(t.Total))); err != nil {
		return err
	}

	o.Payment = p
	o.Stage = StagePayment
	s.persist(ctx)
	return nil
}

// Complete drives payment → completed, the only transition with durable
// side effects, as a single logical unit of work:
//
//  1. Recompute totals and revalidate the payment — never trust a stale
//     cached total.
//  2. Persist the completed order. Failure here reverts to the payment
//     stage with all reserved stock intact and nothing written.
//  3. Commit the sale: one ledger entry per cart line plus the counter
//     advance. Failure here is returned as *LedgerWriteError — the order
//     record already exists, so it is surfaced loudly for a compensating
//     adjustment instead of being silently rolled back. The commit runs in
//     one transaction, so on failure nothing was consumed and the holds
//     are released before the order leaves the session.
//  4. Remove the order from the set; a fresh default order is created when
//     the set would be left empty.
//
// On success the Completion is returned; a *LedgerWriteError accompanies a
// non-nil Completion because the order did complete.
func (s *Session) Complete(ctx context.Context, id uuid.UUID) (*Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.byID(id)
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.Stage != StagePayment || o.Payment == nil {
		return nil, ErrInvalidTransition
	}

	t := ComputeTotals(o)
	if err := o.Payment.Validate(t.FinalTotal); err != nil {
		return nil, err
	}

	o.Stage = StageCompleted
	if err := s.sink.PersistOrder(ctx, o, t); err != nil {
		o.Stage = StagePayment
		return nil, err
	}

	var ledgerErr error
	if err := s.sink.CommitSale(ctx, o, t); err != nil {
		ledgerErr = &LedgerWriteError{OrderID: o.ID, Err: err}
		s.log.Error().Err(err).
			Str("order_id", o.ID.String()).
			Msg("checkout: order persisted but ledger commit failed — manual stock adjustment required")
		// The sale transaction rolled back without consuming the holds.
		// Return them now, before the order is dropped from the session,
		// or the units stay unsellable with no owner.
		s.releaseAll(ctx, o)
	}

	completed := o.clone()
	s.remove(id)
	s.ensureDefault()
	if s.activeID == id {
		s.activeID = s.orders[0].ID
	}
	s.persist(ctx)

	change := decimal.Zero
	if cash, ok := completed.Payment.(*CashPayment); ok {
		change = cash.Change(t.FinalTotal)
	}
	return &Completion{Order: completed, Totals: t, Change: change}, ledgerErr
}
