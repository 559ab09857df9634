package pos

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Payment is a tagged variant: exactly one concrete type per method.
// Validate enforces the per-method mandatory fields against the order total;
// Surcharge is the payment-method service charge added only at capture time,
// never part of the stored order total.
type Payment interface {
	Method() PaymentMethod
	Validate(total decimal.Decimal) error
	Surcharge(total decimal.Decimal) decimal.Decimal
}

// ── Cash ─────────────────────────────────────────────────────────────────────

type CashPayment struct {
	Given decimal.Decimal `json:"given"`
}

func (p *CashPayment) Method() PaymentMethod { return PaymentCash }

func (p *CashPayment) Validate(total decimal.Decimal) error {
	if p.Given.LessThan(total) {
		return ErrInsufficientPayment
	}
	return nil
}

func (p *CashPayment) Surcharge(decimal.Decimal) decimal.Decimal { return decimal.Zero }

// Change returns the cash to hand back for the given total.
func (p *CashPayment) Change(total decimal.Decimal) decimal.Decimal {
	return p.Given.Sub(total)
}

// ── Card ─────────────────────────────────────────────────────────────────────

type CardPayment struct {
	InvoiceID string `json:"invoice_id"`
	Issuer    string `json:"issuer"`
	// SurchargeRate is the issuer service charge in percent.
	SurchargeRate decimal.Decimal `json:"surcharge_rate"`
}

func (p *CardPayment) Method() PaymentMethod { return PaymentCard }

func (p *CardPayment) Validate(decimal.Decimal) error {
	if p.InvoiceID == "" || p.Issuer == "" {
		return ErrIncompletePaymentDetails
	}
	return nil
}

func (p *CardPayment) Surcharge(total decimal.Decimal) decimal.Decimal {
	return total.Mul(p.SurchargeRate).Div(decimal.NewFromInt(100))
}

// ── Serialization ────────────────────────────────────────────────────────────
// paymentEnvelope is the JSON shape used when an order is mirrored to the
// tab store: {"method":"cash","cash":{...}} / {"method":"card","card":{...}}.

type paymentEnvelope struct {
	Method PaymentMethod `json:"method"`
	Cash   *CashPayment  `json:"cash,omitempty"`
	Card   *CardPayment  `json:"card,omitempty"`
}

func wrapPayment(p Payment) *paymentEnvelope {
	switch v := p.(type) {
	case nil:
		return nil
	case *CashPayment:
		return &paymentEnvelope{Method: PaymentCash, Cash: v}
	case *CardPayment:
		return &paymentEnvelope{Method: PaymentCard, Card: v}
	default:
		return nil
	}
}

func (e *paymentEnvelope) unwrap() (Payment, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Method {
	case PaymentCash:
		if e.Cash == nil {
			return nil, fmt.Errorf("payment envelope: missing cash body")
		}
		return e.Cash, nil
	case PaymentCard:
		if e.Card == nil {
			return nil, fmt.Errorf("payment envelope: missing card body")
		}
		return e.Card, nil
	default:
		return nil, fmt.Errorf("payment envelope: unknown method %q", e.Method)
	}
}

var _ json.Marshaler = Order{}
