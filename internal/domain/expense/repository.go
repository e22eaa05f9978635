package expense

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository manages expense transaction persistence
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByParty(ctx context.Context, responsiblePartyID string, limit, offset int) ([]*Transaction, error)

	// SumByParties totals expense amounts across the given responsible
	// parties. Used by the reconciliation engine to restate balances.
	SumByParties(ctx context.Context, responsiblePartyIDs []string) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing expense transaction
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "expense transaction not found: " + e.ID.String()
}

// Is matches any ErrTransactionNotFound when the target ID is nil
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.ID == uuid.Nil || e.ID == t.ID
}
