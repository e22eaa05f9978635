package person

import "context"

// Registry is the single lookup point for expense attribution.
// Resolve returns ErrUnmappedParty when no mapping exists.
type Registry interface {
	// Resolve maps a responsible party to the canonical debt account owner
	Resolve(ctx context.Context, responsiblePartyID string) (string, error)

	// PartiesFor returns every responsible party mapped to the given
	// person. Used by the reconciliation engine to aggregate expenses.
	PartiesFor(ctx context.Context, personID string) ([]string, error)
}

// Repository manages person mapping configuration
type Repository interface {
	Registry

	Upsert(ctx context.Context, mapping *Mapping) error
	Delete(ctx context.Context, responsiblePartyID string) error
	List(ctx context.Context) ([]*Mapping, error)
}
