package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/statutecheck/statutecheck/internal/model"
)

// StateStore handles database operations for states
type StateStore struct {
	db *sql.DB
}

// NewStateStore creates a new StateStore
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// GetAll retrieves all states ordered by name
func (s *StateStore) GetAll(ctx context.Context) ([]model.State, error) {
	query := `
		SELECT id, name, slug, state_code
		FROM states
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get states: %w", err)
	}
	defer rows.Close()

	var states []model.State
	for rows.Next() {
		var st model.State
		if err := rows.Scan(&st.ID, &st.Name, &st.Slug, &st.StateCode); err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		states = append(states, st)
	}

	return states, rows.Err()
}

// GetWithStatutes retrieves states that have at least one live statute,
// for the public search dropdown
func (s *StateStore) GetWithStatutes(ctx context.Context) ([]model.State, error) {
	query := `
		SELECT DISTINCT s.id, s.name, s.slug, s.state_code
		FROM states s
		JOIN statutes st ON s.id = st.state_id
		ORDER BY s.name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get states with statutes: %w", err)
	}
	defer rows.Close()

	var states []model.State
	for rows.Next() {
		var st model.State
		if err := rows.Scan(&st.ID, &st.Name, &st.Slug, &st.StateCode); err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		states = append(states, st)
	}

	return states, rows.Err()
}

// GetBySlug retrieves a state by its slug
func (s *StateStore) GetBySlug(ctx context.Context, slug string) (*model.State, error) {
	query := `SELECT id, name, slug, state_code FROM states WHERE slug = $1`

	var st model.State
	err := s.db.QueryRowContext(ctx, query, slug).Scan(&st.ID, &st.Name, &st.Slug, &st.StateCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state %s: %w", slug, err)
	}

	return &st, nil
}

// NameLookup returns a case-insensitive display-name to id mapping for
// bulk-row validation
func (s *StateStore) NameLookup(ctx context.Context) (map[string]int, error) {
	states, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]int, len(states))
	for _, st := range states {
		lookup[strings.ToLower(st.Name)] = st.ID
	}
	return lookup, nil
}
