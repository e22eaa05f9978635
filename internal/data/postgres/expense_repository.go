package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

// ExpenseRepository implements expense.Repository for PostgreSQL
type ExpenseRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewExpenseRepository creates a new PostgreSQL expense repository
func NewExpenseRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.Repository {
	return &ExpenseRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the expense insert
// commits together with the balance update it causes.
func (r *ExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return &ExpenseRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const expenseColumns = `id, amount::text, category, responsible_party_id, comment, created_at`

func scanExpense(row pgx.Row) (*expense.Transaction, error) {
	var txn expense.Transaction
	var amount string
	if err := row.Scan(&txn.ID, &amount, &txn.Category, &txn.ResponsiblePartyID, &txn.Comment, &txn.CreatedAt); err != nil {
		return nil, err
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expense amount %q: %w", amount, err)
	}
	txn.Amount = amt
	return &txn, nil
}

// Create appends an expense transaction to the log
func (r *ExpenseRepository) Create(ctx context.Context, txn *expense.Transaction) error {
	query := `
		INSERT INTO expense_transactions (id, amount, category, responsible_party_id, comment, created_at)
		VALUES ($1, $2::numeric, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.Amount.String(),
		txn.Category,
		txn.ResponsiblePartyID,
		txn.Comment,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create expense transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an expense transaction by its ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*expense.Transaction, error) {
	query := `SELECT ` + expenseColumns + ` FROM expense_transactions WHERE id = $1`

	txn, err := scanExpense(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, expense.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get expense transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get expense transaction: %w", err)
	}

	return txn, nil
}

// ListByParty retrieves expense transactions attributed to a responsible
// party, newest first
func (r *ExpenseRepository) ListByParty(ctx context.Context, responsiblePartyID string, limit, offset int) ([]*expense.Transaction, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expense_transactions
		WHERE responsible_party_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, responsiblePartyID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list expense transactions", "responsible_party_id", responsiblePartyID, "error", err)
		return nil, fmt.Errorf("failed to list expense transactions: %w", err)
	}
	defer rows.Close()

	var txns []*expense.Transaction
	for rows.Next() {
		txn, err := scanExpense(rows)
		if err != nil {
			r.logger.Error("Failed to scan expense transaction", "error", err)
			return nil, fmt.Errorf("failed to scan expense transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over expense transactions", "error", err)
		return nil, fmt.Errorf("error iterating over expense transactions: %w", err)
	}

	return txns, nil
}

// SumByParties totals expense amounts across the given responsible parties
func (r *ExpenseRepository) SumByParties(ctx context.Context, responsiblePartyIDs []string) (decimal.Decimal, error) {
	if len(responsiblePartyIDs) == 0 {
		return decimal.Zero, nil
	}

	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM expense_transactions
		WHERE responsible_party_id = ANY($1)
	`

	var total string
	if err := r.querier.QueryRow(ctx, query, responsiblePartyIDs).Scan(&total); err != nil {
		r.logger.Error("Failed to sum expense transactions", "parties", responsiblePartyIDs, "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum expense transactions: %w", err)
	}

	sum, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse expense sum %q: %w", total, err)
	}
	return sum, nil
}
