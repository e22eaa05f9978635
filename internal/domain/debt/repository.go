package debt

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines debt account persistence operations
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByPersonID(ctx context.Context, personID string) (*Account, error)

	// ApplyExpense atomically increments the balance of the person's
	// account as a single upsert statement, creating the account at
	// balance zero if it does not exist. Returns the resulting account.
	ApplyExpense(ctx context.Context, personID string, amount decimal.Decimal) (*Account, error)

	// Update persists the account using optimistic locking on version
	Update(ctx context.Context, account *Account) error

	// SetBalance overwrites the balance with a reconciled value,
	// bypassing the version check. Used only by the reconciliation engine.
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	// LockForUpdate acquires a row lock for payment processing
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	WithTx(tx pgx.Tx) AccountRepository
}

// PaymentRepository manages immutable payment record persistence
type PaymentRepository interface {
	Create(ctx context.Context, record *PaymentRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)

	// ListByAccountID returns payment history ordered by payment date descending
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*PaymentRecord, error)

	// SumByAccountID totals all payments recorded against the account
	SumByAccountID(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) PaymentRepository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for debt account: " + e.AccountID.String()
}

// Is matches any ErrConcurrentModification when the target carries a nil ID
func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	return t.AccountID == uuid.Nil || e.AccountID == t.AccountID
}

// ErrAccountNotFound indicates missing debt account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
	PersonID  string
}

func (e ErrAccountNotFound) Error() string {
	if e.PersonID != "" {
		return "debt account not found for person: " + e.PersonID
	}
	return "debt account not found: " + e.AccountID.String()
}

// Is matches any ErrAccountNotFound when the target carries no identifiers
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil && t.PersonID == "" {
		return true
	}
	return e.AccountID == t.AccountID && e.PersonID == t.PersonID
}

// ErrInsufficientBalance indicates a payment exceeding the current balance.
// Carries both values so callers can report the exact mismatch.
type ErrInsufficientBalance struct {
	Balance   decimal.Decimal
	Attempted decimal.Decimal
}

func (e ErrInsufficientBalance) Error() string {
	return "payment of " + e.Attempted.String() + " exceeds current balance of " + e.Balance.String()
}

// Is matches any ErrInsufficientBalance regardless of the amounts involved
func (e ErrInsufficientBalance) Is(target error) bool {
	_, ok := target.(ErrInsufficientBalance)
	return ok
}
