package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storefront-debt-ledger/internal/domain/outbox"
	"github.com/storefront-debt-ledger/internal/platform/messaging/producers"
)

// PaymentPublisher publishes outbox messages as payment-recorded events
type PaymentPublisher interface {
	PublishPayment(ctx context.Context, message *outbox.Message) error
}

// PaymentPublisherImpl implements PaymentPublisher
type PaymentPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewPaymentPublisher creates a new publisher
func NewPaymentPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) PaymentPublisher {
	return &PaymentPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishPayment publishes a single outbox message to the payment event
// topic and marks it processed. Keyed by debt account so events for one
// account keep their order within a partition.
func (p *PaymentPublisherImpl) PublishPayment(ctx context.Context, message *outbox.Message) error {
	record, err := message.GetPaymentRecord()
	if err != nil {
		p.logger.Error("Failed to unmarshal payment record from outbox payload",
			"outbox_id", message.ID, "payment_id", message.PaymentID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to mark outbox message FAILED_TO_PUBLISH after unmarshal error",
				"outbox_id", message.ID, "update_error", updateErr,
			)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	if err := p.producer.Publish(ctx, message.DebtAccountID.String(), record); err != nil {
		return fmt.Errorf("failed to publish payment event for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Payment event published but outbox status update failed",
			"outbox_id", message.ID, "payment_id", message.PaymentID.String(), "error", err,
		)
		return fmt.Errorf("publish for outbox %d OK, but failed to mark PROCESSED: %w", message.ID, err)
	}

	p.logger.Info("Outbox message published and marked as PROCESSED",
		"outbox_id", message.ID, "payment_id", message.PaymentID.String(),
	)
	return nil
}
