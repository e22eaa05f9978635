package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/storefront-debt-ledger/internal/migration"
)

// MigrationHandler handles HTTP requests for payout stats migration
type MigrationHandler struct {
	coordinator      *migration.Coordinator
	defaultBatchSize int
	logger           *slog.Logger
}

// NewMigrationHandler creates a new migration handler
func NewMigrationHandler(logger *slog.Logger, coordinator *migration.Coordinator, defaultBatchSize int) *MigrationHandler {
	return &MigrationHandler{
		coordinator:      coordinator,
		defaultBatchSize: defaultBatchSize,
		logger:           logger,
	}
}

// Migrate runs one backfill batch and reports its outcome. Safe to call
// repeatedly; a run over already-migrated data changes nothing.
func (h *MigrationHandler) Migrate(c *gin.Context) {
	req := MigrateRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Invalid request body", "error", err)
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}
	if req.BatchSize == 0 {
		req.BatchSize = h.defaultBatchSize
	}

	result, err := h.coordinator.Migrate(c.Request.Context(), req.BatchSize)
	if err != nil {
		if result != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			// Interrupted run: report partial progress
			RespondOK(c, result)
			return
		}
		h.logger.Error("Migration run failed", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, result)
}

// MigrationStatus reports how much of the payout stats collection still
// awaits backfill
func (h *MigrationHandler) MigrationStatus(c *gin.Context) {
	status, err := h.coordinator.CurrentStatus(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get migration status", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, status)
}
