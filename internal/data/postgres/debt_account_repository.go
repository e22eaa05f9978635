// Package postgres provides PostgreSQL implementations of the ledger
// repositories. All balance mutation goes through this package; monetary
// values are NUMERIC columns crossing the driver boundary as text.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

// DebtAccountRepository implements debt.AccountRepository for PostgreSQL
type DebtAccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewDebtAccountRepository creates a new PostgreSQL debt account repository
func NewDebtAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) debt.AccountRepository {
	return &DebtAccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so account mutation is
// atomic with the other writes of the same unit of work.
func (r *DebtAccountRepository) WithTx(tx pgx.Tx) debt.AccountRepository {
	return &DebtAccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const accountColumns = `id, person_id, balance::text, version, created_at, updated_at`

func scanAccount(row pgx.Row) (*debt.Account, error) {
	var acc debt.Account
	var balance string
	if err := row.Scan(&acc.ID, &acc.PersonID, &balance, &acc.Version, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse account balance %q: %w", balance, err)
	}
	acc.Balance = bal
	return &acc, nil
}

// Create stores a new debt account
func (r *DebtAccountRepository) Create(ctx context.Context, acc *debt.Account) error {
	query := `
		INSERT INTO debt_accounts (id, person_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.PersonID,
		acc.Balance.String(),
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create debt account", "person_id", acc.PersonID, "error", err)
		return fmt.Errorf("failed to create debt account: %w", err)
	}

	return nil
}

// GetByID retrieves a debt account by its ID
func (r *DebtAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*debt.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM debt_accounts WHERE id = $1`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, debt.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get debt account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get debt account: %w", err)
	}

	return acc, nil
}

// GetByPersonID retrieves the debt account owned by the given person
func (r *DebtAccountRepository) GetByPersonID(ctx context.Context, personID string) (*debt.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM debt_accounts WHERE person_id = $1`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, personID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, debt.ErrAccountNotFound{PersonID: personID}
		}
		r.logger.Error("Failed to get debt account by person", "person_id", personID, "error", err)
		return nil, fmt.Errorf("failed to get debt account by person: %w", err)
	}

	return acc, nil
}

// ApplyExpense increments the person's balance as one upsert statement,
// creating the account on first posting. Single-statement so concurrent
// postings never read a stale balance.
func (r *DebtAccountRepository) ApplyExpense(ctx context.Context, personID string, amount decimal.Decimal) (*debt.Account, error) {
	query := `
		INSERT INTO debt_accounts (id, person_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, 1, NOW(), NOW())
		ON CONFLICT (person_id) DO UPDATE
		SET balance = debt_accounts.balance + EXCLUDED.balance,
		    version = debt_accounts.version + 1,
		    updated_at = NOW()
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, uuid.New(), personID, amount.String()))
	if err != nil {
		r.logger.Error("Failed to apply expense to debt account", "person_id", personID, "error", err)
		return nil, fmt.Errorf("failed to apply expense to debt account: %w", err)
	}

	return acc, nil
}

// Update persists the account using optimistic locking on the version column.
// Returns ErrConcurrentModification if the account changed since it was read.
func (r *DebtAccountRepository) Update(ctx context.Context, acc *debt.Account) error {
	query := `
		UPDATE debt_accounts
		SET balance = $1::numeric, version = $2, updated_at = $3
		WHERE id = $4 AND version = $5
	`

	result, err := r.querier.Exec(ctx, query,
		acc.Balance.String(),
		acc.Version,
		acc.UpdatedAt,
		acc.ID,
		acc.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update debt account", "id", acc.ID.String(), "error", err)
		return fmt.Errorf("failed to update debt account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return debt.ErrConcurrentModification{AccountID: acc.ID}
	}

	return nil
}

// SetBalance overwrites the balance with a reconciled value. Only the
// reconciliation engine calls this; it bypasses the version check because
// a full restatement supersedes whatever incremental state was there.
func (r *DebtAccountRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	query := `
		UPDATE debt_accounts
		SET balance = $1::numeric, version = version + 1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, balance.String(), id)
	if err != nil {
		r.logger.Error("Failed to set debt account balance", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set debt account balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return debt.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

// LockForUpdate obtains a row lock on the account and returns its current
// state. Must run inside a transaction; serializes payment processing per
// account.
func (r *DebtAccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*debt.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM debt_accounts WHERE id = $1 FOR UPDATE`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, debt.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock debt account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock debt account for update: %w", err)
	}

	return acc, nil
}
