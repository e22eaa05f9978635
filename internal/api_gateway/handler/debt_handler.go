package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-debt-ledger/internal/ledger"
)

// ProcessedByHeader carries the identity of the staff member recording a
// payment.
const ProcessedByHeader = "X-Processed-By"

// DebtHandler handles HTTP requests for debt account operations
type DebtHandler struct {
	ledgerService ledger.Service
	reconciler    ledger.Reconciler
	logger        *slog.Logger
}

// NewDebtHandler creates a new debt handler
func NewDebtHandler(logger *slog.Logger, ledgerService ledger.Service, reconciler ledger.Reconciler) *DebtHandler {
	return &DebtHandler{
		ledgerService: ledgerService,
		reconciler:    reconciler,
		logger:        logger,
	}
}

// GetByPersonID retrieves the debt account of a person, returns 404 if absent
func (h *DebtHandler) GetByPersonID(c *gin.Context) {
	personID := c.Param("personId")

	acc, err := h.ledgerService.GetDebtAccount(c.Request.Context(), personID)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		h.logger.Error("Failed to get debt account", "person_id", personID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Recompute restates the person's balance from the expense and payment logs
func (h *DebtHandler) Recompute(c *gin.Context) {
	personID := c.Param("personId")

	acc, err := h.reconciler.Recompute(c.Request.Context(), personID)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		h.logger.Error("Failed to recompute balance", "person_id", personID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// RecordPayment records a repayment against a debt account
func (h *DebtHandler) RecordPayment(c *gin.Context) {
	idParam := c.Param("id")
	accountID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid debt account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid debt account ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.logger.Error("Invalid payment amount", "amount", req.Amount, "error", err)
		RespondBadRequest(c, "Invalid amount: must be a decimal number")
		return
	}

	processedBy := c.GetHeader(ProcessedByHeader)
	if processedBy == "" {
		RespondBadRequest(c, "Missing "+ProcessedByHeader+" header")
		return
	}

	record, err := h.ledgerService.RecordPayment(c.Request.Context(), accountID, amount, req.Comment, req.ReceiptPhotoRef, processedBy)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		h.logger.Error("Failed to record payment", "debt_account_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapPaymentToResponse(record))
}

// ListPayments retrieves the payment history of a debt account, newest first
func (h *DebtHandler) ListPayments(c *gin.Context) {
	idParam := c.Param("id")
	accountID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid debt account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid debt account ID")
		return
	}

	records, err := h.ledgerService.ListPaymentHistory(c.Request.Context(), accountID)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		h.logger.Error("Failed to list payments", "debt_account_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	payments := make([]PaymentResponse, 0, len(records))
	for _, record := range records {
		payments = append(payments, mapPaymentToResponse(record))
	}

	RespondOK(c, PaymentListResponse{Payments: payments})
}
