package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/storefront-debt-ledger/internal/domain/debt"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Message stores a committed payment record for reliable event
// publishing. Written in the same database transaction as the payment,
// then picked up by the outbox poller.
type Message struct {
	ID            int64           `json:"id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	DebtAccountID uuid.UUID       `json:"debt_account_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a payment record as a pending outbox message
func NewMessage(record *debt.PaymentRecord) (*Message, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	return &Message{
		PaymentID:     record.ID,
		DebtAccountID: record.DebtAccountID,
		Payload:       payload,
		Status:        StatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetPaymentRecord extracts the payment record from the payload
func (m *Message) GetPaymentRecord() (*debt.PaymentRecord, error) {
	var record debt.PaymentRecord
	if err := json.Unmarshal(m.Payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
