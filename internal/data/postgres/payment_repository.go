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

// PaymentRepository implements debt.PaymentRepository for PostgreSQL.
// Payment records are append-only; there is deliberately no update method.
type PaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPaymentRepository creates a new PostgreSQL payment record repository
func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) debt.PaymentRepository {
	return &PaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *PaymentRepository) WithTx(tx pgx.Tx) debt.PaymentRepository {
	return &PaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const paymentColumns = `id, debt_account_id, amount::text, remaining_debt_after::text, comment, receipt_photo_ref, processed_by, payment_date`

func scanPayment(row pgx.Row) (*debt.PaymentRecord, error) {
	var rec debt.PaymentRecord
	var amount, remaining string
	if err := row.Scan(&rec.ID, &rec.DebtAccountID, &amount, &remaining, &rec.Comment, &rec.ReceiptPhotoRef, &rec.ProcessedBy, &rec.PaymentDate); err != nil {
		return nil, err
	}

	var err error
	if rec.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse payment amount %q: %w", amount, err)
	}
	if rec.RemainingDebtAfter, err = decimal.NewFromString(remaining); err != nil {
		return nil, fmt.Errorf("failed to parse remaining debt %q: %w", remaining, err)
	}
	return &rec, nil
}

// Create appends an immutable payment record
func (r *PaymentRepository) Create(ctx context.Context, rec *debt.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (id, debt_account_id, amount, remaining_debt_after, comment, receipt_photo_ref, processed_by, payment_date)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.DebtAccountID,
		rec.Amount.String(),
		rec.RemainingDebtAfter.String(),
		rec.Comment,
		rec.ReceiptPhotoRef,
		rec.ProcessedBy,
		rec.PaymentDate,
	)
	if err != nil {
		r.logger.Error("Failed to create payment record",
			"debt_account_id", rec.DebtAccountID.String(),
			"error", err)
		return fmt.Errorf("failed to create payment record: %w", err)
	}

	return nil
}

// GetByID retrieves a payment record by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*debt.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records WHERE id = $1`

	rec, err := scanPayment(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment record not found: %s", id.String())
		}
		r.logger.Error("Failed to get payment record", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get payment record: %w", err)
	}

	return rec, nil
}

// ListByAccountID returns the payment history of an account, newest first
func (r *PaymentRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*debt.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_records
		WHERE debt_account_id = $1
		ORDER BY payment_date DESC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to list payment records", "debt_account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list payment records: %w", err)
	}
	defer rows.Close()

	var records []*debt.PaymentRecord
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			r.logger.Error("Failed to scan payment record", "error", err)
			return nil, fmt.Errorf("failed to scan payment record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over payment records", "error", err)
		return nil, fmt.Errorf("error iterating over payment records: %w", err)
	}

	return records, nil
}

// SumByAccountID totals all payments recorded against the account
func (r *PaymentRepository) SumByAccountID(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM payment_records
		WHERE debt_account_id = $1
	`

	var total string
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&total); err != nil {
		r.logger.Error("Failed to sum payment records", "debt_account_id", accountID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum payment records: %w", err)
	}

	sum, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse payment sum %q: %w", total, err)
	}
	return sum, nil
}
