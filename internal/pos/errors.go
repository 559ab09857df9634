package pos

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for every recoverable failure of the order engine.
// Callers compare with errors.Is and translate to user-facing messages —
// none of these leaves any order or reservation state modified.
var (
	// ErrInsufficientStock: a reservation would exceed the live counter.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrProtectedOrder: delete attempted on the default order.
	ErrProtectedOrder = errors.New("default order cannot be deleted")

	// ErrInsufficientPayment: cash given does not cover the total.
	ErrInsufficientPayment = errors.New("cash given is less than the total")

	// ErrIncompletePaymentDetails: card payment missing invoice id or issuer.
	ErrIncompletePaymentDetails = errors.New("payment details are incomplete")

	// ErrNegativeStock: a stock event would drive the counter below zero.
	ErrNegativeStock = errors.New("stock cannot go negative")

	ErrOrderNotFound     = errors.New("order not found")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout transition")
)

// LedgerWriteError reports that an order was persisted as completed but the
// ledger/counter commit failed afterwards. It is NOT locally recoverable:
// the order record and the ledger disagree until an operator issues a
// compensating adjustment entry. Never auto-retried — a blind retry risks
// double-decrementing stock.
type LedgerWriteError struct {
	OrderID uuid.UUID
	Err     error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("order %s persisted but ledger write failed: %v", e.OrderID, e.Err)
}

func (e *LedgerWriteError) Unwrap() error { return e.Err }
