package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/statutecheck/statutecheck/internal/model"
)

// IssueStore handles database operations for issue categories
type IssueStore struct {
	db *sql.DB
}

// NewIssueStore creates a new IssueStore
func NewIssueStore(db *sql.DB) *IssueStore {
	return &IssueStore{db: db}
}

// GetAll retrieves all issues ordered by name
func (s *IssueStore) GetAll(ctx context.Context) ([]model.Issue, error) {
	query := `
		SELECT id, name, slug, description, issue_group, updated_by, updated_dt
		FROM issues
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}
	defer rows.Close()

	return scanIssues(rows)
}

// List retrieves a page of issues matching a name search, plus the total count
func (s *IssueStore) List(ctx context.Context, search string, limit, offset int) ([]model.Issue, int, error) {
	pattern := "%" + search + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM issues WHERE name ILIKE $1`
	if err := s.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	query := `
		SELECT id, name, slug, description, issue_group, updated_by, updated_dt
		FROM issues
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	issues, err := scanIssues(rows)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// GetByID retrieves an issue by id
func (s *IssueStore) GetByID(ctx context.Context, id int) (*model.Issue, error) {
	query := `
		SELECT id, name, slug, description, issue_group, updated_by, updated_dt
		FROM issues
		WHERE id = $1
	`

	var i model.Issue
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&i.ID, &i.Name, &i.Slug, &i.Description, &i.IssueGroup, &i.UpdatedBy, &i.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %d: %w", id, err)
	}

	return &i, nil
}

// SlugTaken reports whether another issue already uses the slug.
// excludeID skips the issue being edited; pass 0 when adding.
func (s *IssueStore) SlugTaken(ctx context.Context, slug string, excludeID int) (bool, error) {
	query := `SELECT id FROM issues WHERE slug = $1 AND id != $2`

	var id int
	err := s.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check issue slug %s: %w", slug, err)
	}
	return true, nil
}

// Create inserts a new issue
func (s *IssueStore) Create(ctx context.Context, i *model.Issue, updatedBy string) error {
	query := `
		INSERT INTO issues (name, slug, description, issue_group, updated_by, updated_dt)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		i.Name, i.Slug, i.Description, i.IssueGroup, updatedBy, time.Now(),
	).Scan(&i.ID)
	if err != nil {
		return fmt.Errorf("failed to create issue %s: %w", i.Slug, err)
	}
	return nil
}

// Update overwrites an issue's fields
func (s *IssueStore) Update(ctx context.Context, i *model.Issue, updatedBy string) error {
	query := `
		UPDATE issues
		SET name = $1, slug = $2, description = $3, issue_group = $4, updated_by = $5, updated_dt = $6
		WHERE id = $7
	`

	_, err := s.db.ExecContext(ctx, query,
		i.Name, i.Slug, i.Description, i.IssueGroup, updatedBy, time.Now(), i.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue %d: %w", i.ID, err)
	}
	return nil
}

// Delete removes an issue. Fails on the foreign key when statutes still
// reference it.
func (s *IssueStore) Delete(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue %d: %w", id, err)
	}
	return nil
}

// GetByStateSlug retrieves issues that have a live statute for the given
// state, for the public issue dropdown
func (s *IssueStore) GetByStateSlug(ctx context.Context, stateSlug string) ([]model.Issue, error) {
	query := `
		SELECT DISTINCT i.id, i.name, i.slug, i.description, i.issue_group, i.updated_by, i.updated_dt
		FROM issues i
		JOIN statutes st ON i.id = st.issue_id
		JOIN states s ON st.state_id = s.id
		WHERE s.slug = $1
		ORDER BY i.name
	`

	rows, err := s.db.QueryContext(ctx, query, stateSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get issues for state %s: %w", stateSlug, err)
	}
	defer rows.Close()

	return scanIssues(rows)
}

// NameLookup returns a case-insensitive display-name to id mapping for
// bulk-row validation
func (s *IssueStore) NameLookup(ctx context.Context) (map[string]int, error) {
	issues, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]int, len(issues))
	for _, i := range issues {
		lookup[strings.ToLower(i.Name)] = i.ID
	}
	return lookup, nil
}

func scanIssues(rows *sql.Rows) ([]model.Issue, error) {
	var issues []model.Issue
	for rows.Next() {
		var i model.Issue
		err := rows.Scan(&i.ID, &i.Name, &i.Slug, &i.Description, &i.IssueGroup, &i.UpdatedBy, &i.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}
