// Package migration backfills derived fields on payout stats records
// that older versions of the storefront wrote without them.
package migration

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront-debt-ledger/internal/domain/payout"
)

// Result summarizes a single migration run
type Result struct {
	UpdatedCount    int `json:"updatedCount"`
	SkippedCount    int `json:"skippedCount"`
	TotalCandidates int `json:"totalCandidates"`
}

// Status reports how much of the collection still awaits backfill
type Status struct {
	TotalRecords    int64 `json:"totalRecords"`
	NeedsUpdate     int64 `json:"needsUpdate"`
	AlreadyMigrated int64 `json:"alreadyMigrated"`
}

// Coordinator drives the payout stats backfill in resumable batches
type Coordinator struct {
	statsRepo     payout.Repository
	orderSource   payout.OrderSource
	throttleDelay time.Duration
	logger        *slog.Logger
}

// NewCoordinator creates the migration coordinator
func NewCoordinator(statsRepo payout.Repository, orderSource payout.OrderSource, throttleDelay time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		statsRepo:     statsRepo,
		orderSource:   orderSource,
		throttleDelay: throttleDelay,
		logger:        logger,
	}
}

// Migrate processes up to batchSize records needing derived-field backfill.
// Each record is re-checked and written individually, so an interrupted run
// leaves every touched record either fully updated or untouched, and the
// next run picks up the remainder.
func (c *Coordinator) Migrate(ctx context.Context, batchSize int) (*Result, error) {
	candidates, err := c.statsRepo.FindNeedingUpdate(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	result := &Result{TotalCandidates: len(candidates)}
	for i, record := range candidates {
		select {
		case <-ctx.Done():
			c.logger.Warn("Migration run interrupted",
				"updated", result.UpdatedCount,
				"remaining", len(candidates)-i)
			return result, ctx.Err()
		default:
		}

		// Another run may have updated the record since the batch query
		if !record.NeedsUpdate() {
			result.SkippedCount++
			continue
		}

		updated, err := c.migrateRecord(ctx, record)
		if err != nil {
			// One bad record must not sink the batch; it stays a
			// candidate for the next run.
			c.logger.Error("Failed to migrate payout stats record", "id", record.ID, "error", err)
			result.SkippedCount++
			continue
		}
		if updated {
			result.UpdatedCount++
		} else {
			result.SkippedCount++
		}

		if c.throttleDelay > 0 && i < len(candidates)-1 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(c.throttleDelay):
			}
		}
	}

	c.logger.Info("Migration run finished",
		"candidates", result.TotalCandidates,
		"updated", result.UpdatedCount,
		"skipped", result.SkippedCount)
	return result, nil
}

func (c *Coordinator) migrateRecord(ctx context.Context, record *payout.StatsRecord) (bool, error) {
	if len(record.ReferencedOrderNumbers) == 0 {
		c.logger.Warn("Payout stats record references no orders, skipping", "id", record.ID)
		return false, nil
	}

	orders, err := c.orderSource.GetOrdersByNumbers(ctx, record.ReferencedOrderNumbers)
	if err != nil {
		return false, err
	}
	if len(orders) == 0 {
		c.logger.Warn("No referenced orders found, skipping", "id", record.ID)
		return false, nil
	}

	orderCount := len(orders)
	productTypeStats := make(map[string]int)
	total := decimal.Zero
	for _, order := range orders {
		productTypeStats[order.Category]++
		total = total.Add(decimal.NewFromFloat(order.Price))
	}
	averageCheck, _ := total.Div(decimal.NewFromInt(int64(orderCount))).Round(2).Float64()

	err = c.statsRepo.UpdateDerived(ctx, record.ID, orderCount, averageCheck, productTypeStats)
	if err != nil {
		return false, err
	}
	return true, nil
}

// CurrentStatus reports collection-wide migration progress
func (c *Coordinator) CurrentStatus(ctx context.Context) (*Status, error) {
	total, err := c.statsRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	needing, err := c.statsRepo.CountNeedingUpdate(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		TotalRecords:    total,
		NeedsUpdate:     needing,
		AlreadyMigrated: total - needing,
	}, nil
}
