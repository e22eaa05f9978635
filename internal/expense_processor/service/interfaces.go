package service

import (
	"context"

	"github.com/storefront-debt-ledger/internal/domain/expense"
)

// ProcessingService defines the interface for processing expense events.
type ProcessingService interface {
	ProcessExpenseEvent(ctx context.Context, event *expense.Event) error
}
