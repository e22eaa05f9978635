// Package ledger implements the debt ledger core: expense posting,
// payment recording and balance reconciliation. It is shared by the API
// gateway (synchronous calls) and the expense processor (Kafka events).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/domain/outbox"
	"github.com/storefront-debt-ledger/internal/domain/person"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

// PostingService implements the Service interface
type PostingService struct {
	txRunner           TxRunner
	accountRepo        debt.AccountRepository
	paymentRepo        debt.PaymentRepository
	expenseRepo        expense.Repository
	outboxRepo         outbox.Repository
	registry           person.Registry
	queryTimeout       time.Duration
	maxConflictRetries int
	logger             *slog.Logger
}

// NewPostingService creates the posting service
func NewPostingService(
	txRunner TxRunner,
	accountRepo debt.AccountRepository,
	paymentRepo debt.PaymentRepository,
	expenseRepo expense.Repository,
	outboxRepo outbox.Repository,
	registry person.Registry,
	queryTimeout time.Duration,
	maxConflictRetries int,
	logger *slog.Logger,
) Service {
	return &PostingService{
		txRunner:           txRunner,
		accountRepo:        accountRepo,
		paymentRepo:        paymentRepo,
		expenseRepo:        expenseRepo,
		outboxRepo:         outboxRepo,
		registry:           registry,
		queryTimeout:       queryTimeout,
		maxConflictRetries: maxConflictRetries,
		logger:             logger,
	}
}

func (s *PostingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// PostExpense appends the expense and applies the balance increase in one
// database transaction: both commit or neither does.
func (s *PostingService) PostExpense(ctx context.Context, amount decimal.Decimal, category, responsiblePartyID, comment string) (*expense.Transaction, *debt.Account, error) {
	txn, err := expense.NewTransaction(amount, category, responsiblePartyID, comment)
	if err != nil {
		return nil, nil, err
	}

	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	personID, err := s.registry.Resolve(opCtx, responsiblePartyID)
	if err != nil {
		if errors.Is(err, person.ErrUnmappedParty{}) {
			s.logger.Warn("Expense posting rejected for unmapped party", "responsible_party_id", responsiblePartyID)
			return nil, nil, err
		}
		return nil, nil, persistence.MapError(err)
	}

	var acc *debt.Account
	err = s.txRunner.ExecuteTx(opCtx, func(tx pgx.Tx) error {
		if err := s.expenseRepo.WithTx(tx).Create(opCtx, txn); err != nil {
			return err
		}
		var applyErr error
		acc, applyErr = s.accountRepo.WithTx(tx).ApplyExpense(opCtx, personID, txn.Amount)
		return applyErr
	})
	if err != nil {
		s.logger.Error("Failed to post expense",
			"responsible_party_id", responsiblePartyID,
			"person_id", personID,
			"error", err)
		return nil, nil, persistence.MapError(err)
	}

	s.logger.Info("Expense posted",
		"expense_id", txn.ID.String(),
		"person_id", personID,
		"amount", txn.Amount.String(),
		"new_balance", acc.Balance.String())
	return txn, acc, nil
}

// RecordPayment serializes the read-modify-write on the account balance
// with a row lock plus version check, then appends the audit row and the
// outbox message in the same transaction. Conflicts are retried a bounded
// number of times before surfacing.
func (s *PostingService) RecordPayment(ctx context.Context, debtAccountID uuid.UUID, amount decimal.Decimal, comment, receiptPhotoRef, processedBy string) (*debt.PaymentRecord, error) {
	if amount.Sign() <= 0 {
		return nil, debt.ErrInvalidAmount
	}
	if processedBy == "" {
		return nil, debt.ErrEmptyProcessor
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxConflictRetries; attempt++ {
		record, err := s.recordPaymentOnce(ctx, debtAccountID, amount, comment, receiptPhotoRef, processedBy)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, debt.ErrConcurrentModification{}) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("Payment hit concurrent modification, retrying",
			"debt_account_id", debtAccountID.String(),
			"attempt", attempt)
	}

	s.logger.Error("Payment retries exhausted on concurrent modification",
		"debt_account_id", debtAccountID.String(),
		"attempts", s.maxConflictRetries)
	return nil, lastErr
}

func (s *PostingService) recordPaymentOnce(ctx context.Context, debtAccountID uuid.UUID, amount decimal.Decimal, comment, receiptPhotoRef, processedBy string) (*debt.PaymentRecord, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var record *debt.PaymentRecord
	err := s.txRunner.ExecuteTx(opCtx, func(tx pgx.Tx) error {
		accountRepoTx := s.accountRepo.WithTx(tx)

		acc, err := accountRepoTx.LockForUpdate(opCtx, debtAccountID)
		if err != nil {
			return err
		}

		// Rejects the payment outright if it exceeds the balance;
		// nothing is ever partially applied.
		if err := acc.ApplyPayment(amount); err != nil {
			return err
		}

		record, err = debt.NewPaymentRecord(acc.ID, amount, acc.Balance, comment, receiptPhotoRef, processedBy)
		if err != nil {
			return err
		}

		if err := accountRepoTx.Update(opCtx, acc); err != nil {
			return err
		}

		if err := s.paymentRepo.WithTx(tx).Create(opCtx, record); err != nil {
			return err
		}

		message, err := outbox.NewMessage(record)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		return s.outboxRepo.WithTx(tx).Create(opCtx, message)
	})
	if err != nil {
		if errors.Is(err, debt.ErrInsufficientBalance{}) || errors.Is(err, debt.ErrAccountNotFound{}) {
			return nil, err
		}
		if errors.Is(err, debt.ErrConcurrentModification{}) {
			return nil, err
		}
		s.logger.Error("Failed to record payment",
			"debt_account_id", debtAccountID.String(),
			"error", err)
		return nil, persistence.MapError(err)
	}

	s.logger.Info("Payment recorded",
		"payment_id", record.ID.String(),
		"debt_account_id", debtAccountID.String(),
		"amount", record.Amount.String(),
		"remaining_debt", record.RemainingDebtAfter.String(),
		"processed_by", processedBy)
	return record, nil
}

// GetDebtAccount retrieves the debt account owned by the given person
func (s *PostingService) GetDebtAccount(ctx context.Context, personID string) (*debt.Account, error) {
	if personID == "" {
		return nil, debt.ErrEmptyPersonID
	}

	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	acc, err := s.accountRepo.GetByPersonID(opCtx, personID)
	if err != nil {
		if errors.Is(err, debt.ErrAccountNotFound{}) {
			return nil, err
		}
		return nil, persistence.MapError(err)
	}
	return acc, nil
}

// ListPaymentHistory returns the payment records of an account, newest first
func (s *PostingService) ListPaymentHistory(ctx context.Context, debtAccountID uuid.UUID) ([]*debt.PaymentRecord, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Distinguish an empty history from a nonexistent account
	if _, err := s.accountRepo.GetByID(opCtx, debtAccountID); err != nil {
		if errors.Is(err, debt.ErrAccountNotFound{}) {
			return nil, err
		}
		return nil, persistence.MapError(err)
	}

	records, err := s.paymentRepo.ListByAccountID(opCtx, debtAccountID)
	if err != nil {
		return nil, persistence.MapError(err)
	}
	return records, nil
}
