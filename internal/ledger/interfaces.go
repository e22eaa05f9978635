package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
)

// Service owns all debt balance mutation. Expense postings and payments
// go through here and nowhere else, so the ledger identity
// balance == Σexpenses − Σpayments holds by construction.
type Service interface {
	// PostExpense appends an expense transaction and increases the debt
	// account of the person the responsible party maps to, atomically.
	// Returns ErrUnmappedParty if the party has no person mapping.
	PostExpense(ctx context.Context, amount decimal.Decimal, category, responsiblePartyID, comment string) (*expense.Transaction, *debt.Account, error)

	// RecordPayment validates a repayment against the current balance,
	// decrements it and appends an immutable payment record carrying the
	// remaining-debt snapshot. Returns ErrInsufficientBalance if the
	// amount exceeds the balance, ErrAccountNotFound if the account does
	// not exist.
	RecordPayment(ctx context.Context, debtAccountID uuid.UUID, amount decimal.Decimal, comment, receiptPhotoRef, processedBy string) (*debt.PaymentRecord, error)

	// GetDebtAccount retrieves the debt account owned by the given person
	GetDebtAccount(ctx context.Context, personID string) (*debt.Account, error)

	// ListPaymentHistory returns the payment records of an account,
	// ordered by payment date descending
	ListPaymentHistory(ctx context.Context, debtAccountID uuid.UUID) ([]*debt.PaymentRecord, error)
}

// Reconciler restates debt balances from the expense and payment logs,
// ignoring the stored balance entirely.
type Reconciler interface {
	// Recompute sets the person's balance to Σexpenses − Σpayments
	// aggregated from the logs, creating the account if missing.
	// Idempotent: a second run with no intervening writes is a no-op.
	Recompute(ctx context.Context, personID string) (*debt.Account, error)
}

// TxRunner abstracts the transactional boundary of the postgres database
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
