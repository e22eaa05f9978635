package expense

import (
	"time"

	"github.com/google/uuid"
)

// Event defines a Kafka message emitted by the expense-entry
// collaborator when an expense is created. Amount travels as a decimal
// string to avoid float precision loss on the wire.
type Event struct {
	ExpenseID          uuid.UUID `json:"expense_id"`
	Amount             string    `json:"amount"`
	Category           string    `json:"category"`
	ResponsiblePartyID string    `json:"responsible_party_id"`
	Comment            string    `json:"comment,omitempty"`
	CorrelationID      string    `json:"correlation_id,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}
