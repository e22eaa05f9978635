package payout

import "context"

// Order is the slice of the external order-tracking data the migration
// needs: number, product category and price.
type Order struct {
	OrderNumber string  `json:"order_number" bson:"order_number"`
	Category    string  `json:"category" bson:"category"`
	Price       float64 `json:"price" bson:"price"`
}

// OrderSource provides read access to the order data owned by the
// order-tracking collaborator. Order numbers with no matching order are
// simply absent from the result.
type OrderSource interface {
	GetOrdersByNumbers(ctx context.Context, numbers []string) ([]*Order, error)
}
