package dto

// Customers and suppliers share the same thin CRUD shape — they exist as
// order references and ledger counterparties.

type CreatePartnerRequest struct {
	Name    string  `json:"name"    validate:"required,min=1"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address"`
}

type PartnerResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
	Active  bool    `json:"active"`
}
