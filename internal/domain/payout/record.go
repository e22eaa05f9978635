package payout

// StatsRecord is a historical payout record whose summary fields are
// derived from the orders it references. OrderCount, AverageCheck and
// ProductTypeStats were computed with an older rule on legacy records;
// the migration coordinator backfills them.
type StatsRecord struct {
	ID                     string         `json:"id" bson:"_id"`
	ReferencedOrderNumbers []string       `json:"referenced_order_numbers" bson:"referenced_order_numbers"`
	OrderCount             int            `json:"order_count" bson:"order_count"`
	AverageCheck           float64        `json:"average_check" bson:"average_check"`
	ProductTypeStats       map[string]int `json:"product_type_stats" bson:"product_type_stats"`
}

// NeedsUpdate reports whether the derived fields still have to be
// computed. This predicate is the single idempotence rule shared by the
// migration batch and the status check: a record counts as migrated
// exactly when its derived fields are populated, not when some one-shot
// flag was set.
func (r *StatsRecord) NeedsUpdate() bool {
	return r.OrderCount <= 0 || len(r.ProductTypeStats) == 0
}
