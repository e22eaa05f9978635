package debt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrEmptyPersonID  = errors.New("person id cannot be empty")
	ErrEmptyProcessor = errors.New("processed_by cannot be empty")
)

// Account tracks how much a single person currently owes the business.
// Invariant: balance equals the sum of expenses attributed to the person
// minus the sum of payments recorded against the account, and is never
// negative.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	PersonID  string          `json:"person_id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int             `json:"version"` // For optimistic locking
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewAccount creates an empty debt account for the given person
func NewAccount(personID string) (*Account, error) {
	if personID == "" {
		return nil, ErrEmptyPersonID
	}

	return &Account{
		ID:        uuid.New(),
		PersonID:  personID,
		Balance:   decimal.Zero,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// ApplyExpense increases the balance by the expense amount
func (a *Account) ApplyExpense(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// ApplyPayment decreases the balance by the payment amount. A payment
// exceeding the current balance is rejected, never clamped.
func (a *Account) ApplyPayment(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance{Balance: a.Balance, Attempted: amount}
	}

	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanPay checks whether the account balance covers the given amount
func (a *Account) CanPay(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
