package debt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecord is an immutable audit row for a repayment against a debt
// account. RemainingDebtAfter is a point-in-time snapshot of the balance
// right after the payment was applied; it is never recomputed.
type PaymentRecord struct {
	ID                 uuid.UUID       `json:"id"`
	DebtAccountID      uuid.UUID       `json:"debt_account_id"`
	Amount             decimal.Decimal `json:"amount"`
	RemainingDebtAfter decimal.Decimal `json:"remaining_debt_after"`
	Comment            string          `json:"comment,omitempty"`
	ReceiptPhotoRef    string          `json:"receipt_photo_ref,omitempty"`
	ProcessedBy        string          `json:"processed_by"`
	PaymentDate        time.Time       `json:"payment_date"`
}

// NewPaymentRecord builds the audit row for a payment applied to an account.
// remainingAfter must be the account balance after the decrement.
func NewPaymentRecord(accountID uuid.UUID, amount, remainingAfter decimal.Decimal, comment, receiptPhotoRef, processedBy string) (*PaymentRecord, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if processedBy == "" {
		return nil, ErrEmptyProcessor
	}

	return &PaymentRecord{
		ID:                 uuid.New(),
		DebtAccountID:      accountID,
		Amount:             amount,
		RemainingDebtAfter: remainingAfter,
		Comment:            comment,
		ReceiptPhotoRef:    receiptPhotoRef,
		ProcessedBy:        processedBy,
		PaymentDate:        time.Now(),
	}, nil
}
