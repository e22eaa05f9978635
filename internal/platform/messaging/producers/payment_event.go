package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/storefront-debt-ledger/internal/config"
)

// PaymentEventProducer publishes payment-recorded events drained from the
// transactional outbox.
type PaymentEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new payment event producer and ensures topic exists
func NewPaymentEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*PaymentEventProducer, error) {
	if cfg.PaymentEventTopic == "" {
		return nil, fmt.Errorf("kafka payment event topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for payment event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.PaymentEventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure payment event topic %s exists: %w", cfg.PaymentEventTopic, err)
	}

	// Synchronous writes: the outbox poller must know the publish landed
	// before it marks the row processed.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.PaymentEventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &PaymentEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.PaymentEventTopic,
	}, nil
}

func (p *PaymentEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish payment event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish payment event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published payment event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *PaymentEventProducer) Close() error {
	p.logger.Info("Closing payment event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close payment event kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
