package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/storefront-debt-ledger/internal/ledger"
)

// ExpenseHandler handles HTTP requests for expense operations
type ExpenseHandler struct {
	ledgerService ledger.Service
	logger        *slog.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(logger *slog.Logger, ledgerService ledger.Service) *ExpenseHandler {
	return &ExpenseHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Create records a shared expense and applies it to the debt account of
// the person the responsible party maps to
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req PostExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.logger.Error("Invalid expense amount", "amount", req.Amount, "error", err)
		RespondBadRequest(c, "Invalid amount: must be a decimal number")
		return
	}

	txn, acc, err := h.ledgerService.PostExpense(c.Request.Context(), amount, req.Category, req.ResponsiblePartyID, req.Comment)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		h.logger.Error("Failed to post expense", "responsible_party_id", req.ResponsiblePartyID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, gin.H{
		"expense":      mapExpenseToResponse(txn),
		"debt_account": mapAccountToResponse(acc),
	})
}
