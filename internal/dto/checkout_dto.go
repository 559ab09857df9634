package dto

import (
	"github.com/chathuwa-whiz/zors-pos/internal/pos"

	"github.com/shopspring/decimal"
)

// PaymentRequest captures payment details for the payment stage. Method
// selects the variant; the matching fields are mandatory per method.
type PaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=cash card"`

	// cash
	CashGiven *decimal.Decimal `json:"cash_given"`

	// card
	CardInvoiceID string `json:"card_invoice_id"`
	CardIssuer    string `json:"card_issuer"`
}

// CompletionResponse reports a finished checkout. LedgerWarning is set when
// the order was persisted but the stock ledger commit failed — the operator
// must issue a compensating adjustment.
type CompletionResponse struct {
	Order         pos.Order       `json:"order"`
	Totals        pos.Totals      `json:"totals"`
	Change        decimal.Decimal `json:"change"`
	LedgerWarning *string         `json:"ledger_warning,omitempty"`
}
