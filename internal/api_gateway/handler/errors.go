package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/domain/person"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

// respondDomainError maps ledger errors to HTTP responses. Returns false
// when the error is not a recognized domain error, leaving it to the
// caller to respond.
func respondDomainError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, expense.ErrInvalidAmount),
		errors.Is(err, expense.ErrEmptyCategory),
		errors.Is(err, expense.ErrEmptyParty),
		errors.Is(err, debt.ErrInvalidAmount),
		errors.Is(err, debt.ErrEmptyPersonID),
		errors.Is(err, debt.ErrEmptyProcessor):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, debt.ErrAccountNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.Is(err, debt.ErrInsufficientBalance{}):
		RespondUnprocessable(c, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, person.ErrUnmappedParty{}):
		RespondUnprocessable(c, "UNMAPPED_PARTY", err.Error())
	case errors.Is(err, debt.ErrConcurrentModification{}):
		RespondConflict(c, err.Error())
	case errors.Is(err, persistence.ErrStorageTimeout),
		errors.Is(err, persistence.ErrStorageUnavailable):
		RespondServiceUnavailable(c, "")
	default:
		return false
	}
	return true
}
