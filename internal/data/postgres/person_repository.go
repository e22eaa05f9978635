package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/storefront-debt-ledger/internal/domain/person"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

// PersonMappingRepository implements person.Repository for PostgreSQL.
// The person_mappings table is the single source of truth for expense
// attribution; nothing else in the codebase hardcodes party-to-person
// rules.
type PersonMappingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPersonMappingRepository creates a new PostgreSQL person mapping repository
func NewPersonMappingRepository(logger *slog.Logger, db *persistence.PostgresDB) person.Repository {
	return &PersonMappingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Resolve maps a responsible party to the canonical person.
// Returns ErrUnmappedParty when no mapping exists; callers must not guess.
func (r *PersonMappingRepository) Resolve(ctx context.Context, responsiblePartyID string) (string, error) {
	query := `SELECT person_id FROM person_mappings WHERE responsible_party_id = $1`

	var personID string
	err := r.querier.QueryRow(ctx, query, responsiblePartyID).Scan(&personID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", person.ErrUnmappedParty{ResponsiblePartyID: responsiblePartyID}
		}
		r.logger.Error("Failed to resolve person mapping", "responsible_party_id", responsiblePartyID, "error", err)
		return "", fmt.Errorf("failed to resolve person mapping: %w", err)
	}

	return personID, nil
}

// PartiesFor returns every responsible party mapped to the given person
func (r *PersonMappingRepository) PartiesFor(ctx context.Context, personID string) ([]string, error) {
	query := `SELECT responsible_party_id FROM person_mappings WHERE person_id = $1`

	rows, err := r.querier.Query(ctx, query, personID)
	if err != nil {
		r.logger.Error("Failed to get parties for person", "person_id", personID, "error", err)
		return nil, fmt.Errorf("failed to get parties for person: %w", err)
	}
	defer rows.Close()

	var parties []string
	for rows.Next() {
		var partyID string
		if err := rows.Scan(&partyID); err != nil {
			return nil, fmt.Errorf("failed to scan responsible party id: %w", err)
		}
		parties = append(parties, partyID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over person mappings: %w", err)
	}

	return parties, nil
}

// Upsert creates or replaces the mapping for a responsible party
func (r *PersonMappingRepository) Upsert(ctx context.Context, mapping *person.Mapping) error {
	query := `
		INSERT INTO person_mappings (responsible_party_id, person_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (responsible_party_id) DO UPDATE
		SET person_id = EXCLUDED.person_id, updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query,
		mapping.ResponsiblePartyID,
		mapping.PersonID,
		mapping.CreatedAt,
		mapping.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert person mapping",
			"responsible_party_id", mapping.ResponsiblePartyID,
			"person_id", mapping.PersonID,
			"error", err)
		return fmt.Errorf("failed to upsert person mapping: %w", err)
	}

	return nil
}

// Delete removes the mapping for a responsible party
func (r *PersonMappingRepository) Delete(ctx context.Context, responsiblePartyID string) error {
	query := `DELETE FROM person_mappings WHERE responsible_party_id = $1`

	result, err := r.querier.Exec(ctx, query, responsiblePartyID)
	if err != nil {
		r.logger.Error("Failed to delete person mapping", "responsible_party_id", responsiblePartyID, "error", err)
		return fmt.Errorf("failed to delete person mapping: %w", err)
	}

	if result.RowsAffected() == 0 {
		return person.ErrUnmappedParty{ResponsiblePartyID: responsiblePartyID}
	}

	return nil
}

// List returns all person mappings for operator inspection
func (r *PersonMappingRepository) List(ctx context.Context) ([]*person.Mapping, error) {
	query := `
		SELECT responsible_party_id, person_id, created_at, updated_at
		FROM person_mappings
		ORDER BY responsible_party_id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list person mappings", "error", err)
		return nil, fmt.Errorf("failed to list person mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*person.Mapping
	for rows.Next() {
		var m person.Mapping
		if err := rows.Scan(&m.ResponsiblePartyID, &m.PersonID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person mapping: %w", err)
		}
		mappings = append(mappings, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over person mappings: %w", err)
	}

	return mappings, nil
}
