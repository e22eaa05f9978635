package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/expense_processor/service"
	"github.com/storefront-debt-ledger/internal/platform/messaging/producers"
)

// ExpenseEventHandler handles incoming expense event messages from Kafka
type ExpenseEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewExpenseEventHandler creates a new handler
func NewExpenseEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *ExpenseEventHandler {
	return &ExpenseEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ExpenseEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event expense.Event
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal expense event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)
		reason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
		return h.sendToDLQ(ctx, key, value, reason, err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received expense event for processing",
		"expense_id", event.ExpenseID.String(),
		"responsible_party_id", event.ResponsiblePartyID,
		"amount", event.Amount,
	)

	if err := h.processingService.ProcessExpenseEvent(ctx, &event); err != nil {
		if errors.Is(err, service.ErrNonRetryable) {
			logger.Error("Expense event is not retryable, routing to DLQ",
				"expense_id", event.ExpenseID.String(),
				"error", err,
			)
			return h.sendToDLQ(ctx, key, value, err.Error(), err)
		}

		logger.Error("Failed to process expense event, leaving for redelivery",
			"expense_id", event.ExpenseID.String(),
			"error", err,
		)
		return fmt.Errorf("processing expense event %s failed: %w", event.ExpenseID.String(), err)
	}

	logger.Info("Successfully processed expense event", "expense_id", event.ExpenseID.String())
	return nil // Success, commit offset
}

// sendToDLQ parks the message and returns nil so the offset commits.
// If the DLQ is unavailable the original error is returned and the
// message stays uncommitted.
func (h *ExpenseEventHandler) sendToDLQ(ctx context.Context, key, value []byte, reason string, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("no DLQ configured for unprocessable message: %w", cause)
	}

	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("unprocessable message could not reach DLQ: %w", cause)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil
}
