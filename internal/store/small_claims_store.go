package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/statutecheck/statutecheck/internal/model"
)

// SmallClaimsStore handles read-side database operations for the live
// small_claims table. All writes go through the ApprovalStore.
type SmallClaimsStore struct {
	db *sql.DB
}

// NewSmallClaimsStore creates a new SmallClaimsStore
func NewSmallClaimsStore(db *sql.DB) *SmallClaimsStore {
	return &SmallClaimsStore{db: db}
}

// List retrieves a page of small-claims rows matching a state-name
// search, plus the total count
func (s *SmallClaimsStore) List(ctx context.Context, search string, limit, offset int) ([]model.SmallClaimWithState, int, error) {
	pattern := "%" + search + "%"

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM small_claims sc
		JOIN states s ON sc.state_id = s.id
		WHERE s.name ILIKE $1
	`
	if err := s.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count small claims: %w", err)
	}

	query := `
		SELECT sc.id, sc.state_id, sc.small_claims_cap, sc.small_claims_info,
		       sc.updated_by, sc.updated_dt, s.name
		FROM small_claims sc
		JOIN states s ON sc.state_id = s.id
		WHERE s.name ILIKE $1
		ORDER BY s.name
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list small claims: %w", err)
	}
	defer rows.Close()

	var claims []model.SmallClaimWithState
	for rows.Next() {
		var c model.SmallClaimWithState
		err := rows.Scan(&c.ID, &c.StateID, &c.Cap, &c.Info, &c.UpdatedBy, &c.UpdatedAt, &c.StateName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan small claim: %w", err)
		}
		claims = append(claims, c)
	}

	return claims, total, rows.Err()
}

// GetByID retrieves a small-claims row by id
func (s *SmallClaimsStore) GetByID(ctx context.Context, id int) (*model.SmallClaim, error) {
	query := `
		SELECT id, state_id, small_claims_cap, small_claims_info, updated_by, updated_dt
		FROM small_claims
		WHERE id = $1
	`

	var c model.SmallClaim
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.StateID, &c.Cap, &c.Info, &c.UpdatedBy, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get small claim %d: %w", id, err)
	}

	return &c, nil
}

// ExistsForState reports whether a different small-claims row already
// covers the state. excludeID skips the row being updated; pass 0 for
// inserts.
func (s *SmallClaimsStore) ExistsForState(ctx context.Context, stateID, excludeID int) (bool, error) {
	query := `SELECT id FROM small_claims WHERE state_id = $1 AND id != $2`

	var id int
	err := s.db.QueryRowContext(ctx, query, stateID, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check small claims for state %d: %w", stateID, err)
	}
	return true, nil
}
