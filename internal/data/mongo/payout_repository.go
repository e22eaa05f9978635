// Package mongo provides MongoDB implementations of the derived-statistics
// repositories used by the payout stats migration.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront-debt-ledger/internal/domain/payout"
)

const (
	// PayoutStatsCollectionName is the name of the payout stats collection
	PayoutStatsCollectionName = "payout_stats"
)

// PayoutStatsRepository implements payout.Repository for MongoDB
type PayoutStatsRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPayoutStatsRepository creates a new MongoDB payout stats repository
func NewPayoutStatsRepository(logger *slog.Logger, db *mongo.Database) payout.Repository {
	return &PayoutStatsRepository{
		db:     db,
		logger: logger,
	}
}

// needsUpdateFilter is the query form of StatsRecord.NeedsUpdate. It is the
// only place the predicate is expressed in Mongo terms, so the migration
// selection and the status counts cannot drift apart.
func needsUpdateFilter() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"order_count": bson.M{"$not": bson.M{"$gt": 0}}},
		bson.M{"product_type_stats": bson.M{"$in": bson.A{nil, bson.M{}}}},
	}}
}

// GetByID retrieves a payout stats record by its ID
func (r *PayoutStatsRepository) GetByID(ctx context.Context, id string) (*payout.StatsRecord, error) {
	collection := r.db.Collection(PayoutStatsCollectionName)

	var record payout.StatsRecord
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, payout.ErrRecordNotFound{ID: id}
		}
		r.logger.Error("Failed to get payout stats record", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get payout stats record: %w", err)
	}

	return &record, nil
}

// FindNeedingUpdate returns up to limit records whose derived fields are
// empty or missing, oldest IDs first so re-runs walk the same frontier.
func (r *PayoutStatsRepository) FindNeedingUpdate(ctx context.Context, limit int) ([]*payout.StatsRecord, error) {
	collection := r.db.Collection(PayoutStatsCollectionName)

	opts := options.Find().
		SetSort(bson.M{"_id": 1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, needsUpdateFilter(), opts)
	if err != nil {
		r.logger.Error("Failed to find payout stats records needing update", "error", err)
		return nil, fmt.Errorf("failed to find payout stats records needing update: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*payout.StatsRecord
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode payout stats records", "error", err)
		return nil, fmt.Errorf("failed to decode payout stats records: %w", err)
	}

	return records, nil
}

// UpdateDerived persists the recomputed derived fields of a record
func (r *PayoutStatsRepository) UpdateDerived(ctx context.Context, id string, orderCount int, averageCheck float64, productTypeStats map[string]int) error {
	collection := r.db.Collection(PayoutStatsCollectionName)

	update := bson.M{"$set": bson.M{
		"order_count":        orderCount,
		"average_check":      averageCheck,
		"product_type_stats": productTypeStats,
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to update payout stats record", "id", id, "error", err)
		return fmt.Errorf("failed to update payout stats record: %w", err)
	}

	if result.MatchedCount == 0 {
		return payout.ErrRecordNotFound{ID: id}
	}

	return nil
}

// CountAll counts every payout stats record
func (r *PayoutStatsRepository) CountAll(ctx context.Context) (int64, error) {
	collection := r.db.Collection(PayoutStatsCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to count payout stats records", "error", err)
		return 0, fmt.Errorf("failed to count payout stats records: %w", err)
	}

	return count, nil
}

// CountNeedingUpdate counts records still awaiting derived-field backfill
func (r *PayoutStatsRepository) CountNeedingUpdate(ctx context.Context) (int64, error) {
	collection := r.db.Collection(PayoutStatsCollectionName)

	count, err := collection.CountDocuments(ctx, needsUpdateFilter())
	if err != nil {
		r.logger.Error("Failed to count payout stats records needing update", "error", err)
		return 0, fmt.Errorf("failed to count payout stats records needing update: %w", err)
	}

	return count, nil
}
