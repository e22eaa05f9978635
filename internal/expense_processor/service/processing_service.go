package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/domain/person"
	"github.com/storefront-debt-ledger/internal/ledger"
)

// ErrNonRetryable marks an event as permanently unprocessable. Redelivery
// cannot fix it, so the handler routes it to the DLQ instead of retrying.
var ErrNonRetryable = errors.New("non-retryable expense event")

type ProcessingServiceImpl struct {
	ledgerService ledger.Service
	logger        *slog.Logger
}

func NewProcessingService(ledgerService ledger.Service, logger *slog.Logger) ProcessingService {
	return &ProcessingServiceImpl{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// ProcessExpenseEvent validates the event and posts it to the debt ledger.
// Malformed events and business rejections wrap ErrNonRetryable; everything
// else is treated as transient and returned as-is so Kafka redelivers.
func (s *ProcessingServiceImpl) ProcessExpenseEvent(ctx context.Context, event *expense.Event) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Processing expense event",
		"expense_id", event.ExpenseID.String(),
		"responsible_party_id", event.ResponsiblePartyID,
		"amount", event.Amount,
	)

	amount, err := decimal.NewFromString(event.Amount)
	if err != nil {
		logger.Error("Expense event carries unparseable amount",
			"expense_id", event.ExpenseID.String(),
			"amount", event.Amount,
		)
		return fmt.Errorf("%w: invalid amount %q: %v", ErrNonRetryable, event.Amount, err)
	}

	_, _, err = s.ledgerService.PostExpense(ctx, amount, event.Category, event.ResponsiblePartyID, event.Comment)
	if err != nil {
		if isBusinessRejection(err) {
			logger.Error("Expense event rejected by ledger",
				"expense_id", event.ExpenseID.String(),
				"responsible_party_id", event.ResponsiblePartyID,
				"error", err,
			)
			return fmt.Errorf("%w: %v", ErrNonRetryable, err)
		}
		return fmt.Errorf("posting expense %s failed: %w", event.ExpenseID.String(), err)
	}

	logger.Info("Expense event posted to ledger", "expense_id", event.ExpenseID.String())
	return nil
}

func isBusinessRejection(err error) bool {
	return errors.Is(err, expense.ErrInvalidAmount) ||
		errors.Is(err, expense.ErrEmptyCategory) ||
		errors.Is(err, expense.ErrEmptyParty) ||
		errors.Is(err, debt.ErrInvalidAmount) ||
		errors.Is(err, person.ErrUnmappedParty{})
}
