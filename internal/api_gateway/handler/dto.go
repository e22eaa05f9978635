package handler

import (
	"time"

	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/domain/person"
)

// PostExpenseRequest represents a request to record a shared expense
type PostExpenseRequest struct {
	Amount             string `json:"amount" binding:"required"`
	Category           string `json:"category" binding:"required"`
	ResponsiblePartyID string `json:"responsible_party_id" binding:"required"`
	Comment            string `json:"comment,omitempty"`
}

// RecordPaymentRequest represents a request to record a debt repayment
type RecordPaymentRequest struct {
	Amount          string `json:"amount" binding:"required"`
	Comment         string `json:"comment,omitempty"`
	ReceiptPhotoRef string `json:"receipt_photo_ref,omitempty"`
}

// UpsertMappingRequest represents a request to map a responsible party to a person
type UpsertMappingRequest struct {
	PersonID string `json:"person_id" binding:"required"`
}

// MigrateRequest represents a request to run a payout stats migration batch
type MigrateRequest struct {
	BatchSize int `json:"batch_size,omitempty" binding:"omitempty,min=1,max=1000"`
}

// ExpenseResponse represents an expense transaction in API responses
type ExpenseResponse struct {
	ID                 string `json:"id"`
	Amount             string `json:"amount"`
	Category           string `json:"category"`
	ResponsiblePartyID string `json:"responsible_party_id"`
	Comment            string `json:"comment,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// DebtAccountResponse represents a debt account in API responses
type DebtAccountResponse struct {
	ID        string `json:"id"`
	PersonID  string `json:"person_id"`
	Balance   string `json:"balance"`
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PaymentResponse represents a payment record in API responses
type PaymentResponse struct {
	ID                 string `json:"id"`
	DebtAccountID      string `json:"debt_account_id"`
	Amount             string `json:"amount"`
	RemainingDebtAfter string `json:"remaining_debt_after"`
	Comment            string `json:"comment,omitempty"`
	ReceiptPhotoRef    string `json:"receipt_photo_ref,omitempty"`
	ProcessedBy        string `json:"processed_by"`
	PaymentDate        string `json:"payment_date"`
}

// PaymentListResponse represents a list of payments in API responses
type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// MappingResponse represents a person mapping in API responses
type MappingResponse struct {
	ResponsiblePartyID string `json:"responsible_party_id"`
	PersonID           string `json:"person_id"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// MappingListResponse represents a list of person mappings in API responses
type MappingListResponse struct {
	Mappings []MappingResponse `json:"mappings"`
}

func mapExpenseToResponse(txn *expense.Transaction) ExpenseResponse {
	return ExpenseResponse{
		ID:                 txn.ID.String(),
		Amount:             txn.Amount.String(),
		Category:           txn.Category,
		ResponsiblePartyID: txn.ResponsiblePartyID,
		Comment:            txn.Comment,
		CreatedAt:          txn.CreatedAt.Format(time.RFC3339),
	}
}

func mapAccountToResponse(acc *debt.Account) DebtAccountResponse {
	return DebtAccountResponse{
		ID:        acc.ID.String(),
		PersonID:  acc.PersonID,
		Balance:   acc.Balance.String(),
		Version:   acc.Version,
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapPaymentToResponse(record *debt.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:                 record.ID.String(),
		DebtAccountID:      record.DebtAccountID.String(),
		Amount:             record.Amount.String(),
		RemainingDebtAfter: record.RemainingDebtAfter.String(),
		Comment:            record.Comment,
		ReceiptPhotoRef:    record.ReceiptPhotoRef,
		ProcessedBy:        record.ProcessedBy,
		PaymentDate:        record.PaymentDate.Format(time.RFC3339),
	}
}

func mapMappingToResponse(m *person.Mapping) MappingResponse {
	return MappingResponse{
		ResponsiblePartyID: m.ResponsiblePartyID,
		PersonID:           m.PersonID,
		CreatedAt:          m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          m.UpdatedAt.Format(time.RFC3339),
	}
}
