package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront-debt-ledger/internal/api_gateway/handler"
	"github.com/storefront-debt-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	expenseHandler *handler.ExpenseHandler,
	debtHandler *handler.DebtHandler,
	personHandler *handler.PersonHandler,
	migrationHandler *handler.MigrationHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Expense posting
		v1.POST("/expenses", expenseHandler.Create)

		// Debt balances, keyed by person
		debts := v1.Group("/debts")
		{
			debts.GET("/:personId", debtHandler.GetByPersonID)
			debts.POST("/:personId/recompute", debtHandler.Recompute)
		}

		// Payments, keyed by debt account
		accounts := v1.Group("/debt-accounts")
		{
			accounts.POST("/:id/payments", debtHandler.RecordPayment)
			accounts.GET("/:id/payments", debtHandler.ListPayments)
		}

		// Responsible party to person mappings
		mappings := v1.Group("/person-mappings")
		{
			mappings.GET("", personHandler.List)
			mappings.PUT("/:partyId", personHandler.Upsert)
			mappings.DELETE("/:partyId", personHandler.Delete)
		}

		// Payout stats backfill
		v1.POST("/payout-stats/migrate", migrationHandler.Migrate)
		v1.GET("/payout-stats/migration-status", migrationHandler.MigrationStatus)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
