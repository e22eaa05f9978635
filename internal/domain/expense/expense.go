package expense

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("expense amount must be positive")
	ErrEmptyCategory = errors.New("expense category cannot be empty")
	ErrEmptyParty    = errors.New("responsible party id cannot be empty")
)

// Transaction is an append-only expense record attributed to a
// responsible party. Immutable once created; corrections are made as
// compensating postings, never in-place edits.
type Transaction struct {
	ID                 uuid.UUID       `json:"id"`
	Amount             decimal.Decimal `json:"amount"`
	Category           string          `json:"category"`
	ResponsiblePartyID string          `json:"responsible_party_id"`
	Comment            string          `json:"comment,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewTransaction creates a new expense transaction with the given attributes
func NewTransaction(amount decimal.Decimal, category, responsiblePartyID, comment string) (*Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if category == "" {
		return nil, ErrEmptyCategory
	}
	if responsiblePartyID == "" {
		return nil, ErrEmptyParty
	}

	return &Transaction{
		ID:                 uuid.New(),
		Amount:             amount,
		Category:           category,
		ResponsiblePartyID: responsiblePartyID,
		Comment:            comment,
		CreatedAt:          time.Now(),
	}, nil
}
