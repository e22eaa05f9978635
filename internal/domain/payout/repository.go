package payout

import "context"

// Repository manages payout stats record persistence. FindNeedingUpdate
// and the counting methods must all be driven by the same needs-update
// predicate as StatsRecord.NeedsUpdate, so migration and status never
// disagree.
type Repository interface {
	GetByID(ctx context.Context, id string) (*StatsRecord, error)

	// FindNeedingUpdate returns up to limit records whose derived fields
	// are empty or missing
	FindNeedingUpdate(ctx context.Context, limit int) ([]*StatsRecord, error)

	// UpdateDerived persists the recomputed derived fields of a record
	UpdateDerived(ctx context.Context, id string, orderCount int, averageCheck float64, productTypeStats map[string]int) error

	CountAll(ctx context.Context) (int64, error)
	CountNeedingUpdate(ctx context.Context) (int64, error)
}

// ErrRecordNotFound indicates missing payout stats record
type ErrRecordNotFound struct {
	ID string
}

func (e ErrRecordNotFound) Error() string {
	return "payout stats record not found: " + e.ID
}

// Is matches any ErrRecordNotFound when the target carries an empty id
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.ID == "" || e.ID == t.ID
}
