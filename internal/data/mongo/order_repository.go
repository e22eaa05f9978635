package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront-debt-ledger/internal/domain/payout"
)

const (
	// OrdersCollectionName is the name of the orders collection
	OrdersCollectionName = "orders"
)

// OrderRepository implements payout.OrderSource against the order data
// maintained by the order-tracking collaborator. Read-only from this
// service's perspective.
type OrderRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewOrderRepository creates a new MongoDB order repository
func NewOrderRepository(logger *slog.Logger, db *mongo.Database) payout.OrderSource {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// GetOrdersByNumbers retrieves the orders matching the given numbers.
// Numbers with no matching order are silently absent from the result.
func (r *OrderRepository) GetOrdersByNumbers(ctx context.Context, numbers []string) ([]*payout.Order, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	collection := r.db.Collection(OrdersCollectionName)

	cursor, err := collection.Find(ctx, bson.M{"order_number": bson.M{"$in": numbers}})
	if err != nil {
		r.logger.Error("Failed to get orders by numbers", "count", len(numbers), "error", err)
		return nil, fmt.Errorf("failed to get orders by numbers: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*payout.Order
	if err := cursor.All(ctx, &orders); err != nil {
		r.logger.Error("Failed to decode orders", "error", err)
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}
