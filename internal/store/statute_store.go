package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/statutecheck/statutecheck/internal/model"
)

// StatuteStore handles read-side database operations for the live
// statutes table. All writes go through the ApprovalStore.
type StatuteStore struct {
	db *sql.DB
}

// NewStatuteStore creates a new StatuteStore
func NewStatuteStore(db *sql.DB) *StatuteStore {
	return &StatuteStore{db: db}
}

const statuteColumns = `
	st.id, st.state_id, st.issue_id, st.issue_info, st.time_limit_type,
	st.time_limit_min, st.time_limit_max, st.duration, st.details,
	st.code_reference, st.official_source_url, st.other_source_url,
	st.conditions_exceptions, st.examples, st.tolling, st.updated_by, st.updated_dt`

func scanStatute(row interface{ Scan(...any) error }, st *model.Statute) error {
	return row.Scan(
		&st.ID, &st.StateID, &st.IssueID, &st.IssueInfo, &st.TimeLimitType,
		&st.TimeLimitMin, &st.TimeLimitMax, &st.Duration, &st.Details,
		&st.CodeReference, &st.OfficialSourceURL, &st.OtherSourceURL,
		&st.ConditionsExceptions, &st.Examples, &st.Tolling, &st.UpdatedBy, &st.UpdatedAt,
	)
}

// GetByID retrieves a statute by id
func (s *StatuteStore) GetByID(ctx context.Context, id int) (*model.Statute, error) {
	query := `SELECT` + statuteColumns + ` FROM statutes st WHERE st.id = $1`

	var st model.Statute
	err := scanStatute(s.db.QueryRowContext(ctx, query, id), &st)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statute %d: %w", id, err)
	}

	return &st, nil
}

// ExistsForPair reports whether a different statute already covers the
// (state, issue) pair. excludeID skips the row being updated; pass 0 for
// inserts.
func (s *StatuteStore) ExistsForPair(ctx context.Context, stateID, issueID, excludeID int) (bool, error) {
	query := `SELECT id FROM statutes WHERE state_id = $1 AND issue_id = $2 AND id != $3`

	var id int
	err := s.db.QueryRowContext(ctx, query, stateID, issueID, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check statute for state %d issue %d: %w", stateID, issueID, err)
	}
	return true, nil
}

// FindByPair retrieves the statute id for a (state, issue) pair, or 0
// when none exists. The bulk importer uses it to decide between staging
// an insert or an update.
func (s *StatuteStore) FindByPair(ctx context.Context, stateID, issueID int) (int, error) {
	query := `SELECT id FROM statutes WHERE state_id = $1 AND issue_id = $2`

	var id int
	err := s.db.QueryRowContext(ctx, query, stateID, issueID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find statute for state %d issue %d: %w", stateID, issueID, err)
	}
	return id, nil
}

// List retrieves a page of statutes with their display names, filtered
// by a name search and optional state/issue ids, plus the total count
func (s *StatuteStore) List(ctx context.Context, search string, stateID, issueID, limit, offset int) ([]model.StatuteWithNames, int, error) {
	conditions := `($1 = '' OR s.name ILIKE $2 OR i.name ILIKE $2)
		AND ($3 = 0 OR st.state_id = $3)
		AND ($4 = 0 OR st.issue_id = $4)`
	pattern := "%" + search + "%"

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM statutes st
		JOIN states s ON st.state_id = s.id
		JOIN issues i ON st.issue_id = i.id
		WHERE ` + conditions
	if err := s.db.QueryRowContext(ctx, countQuery, search, pattern, stateID, issueID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count statutes: %w", err)
	}

	query := `
		SELECT` + statuteColumns + `, s.name, i.name
		FROM statutes st
		JOIN states s ON st.state_id = s.id
		JOIN issues i ON st.issue_id = i.id
		WHERE ` + conditions + `
		ORDER BY s.name, i.name
		LIMIT $5 OFFSET $6
	`

	rows, err := s.db.QueryContext(ctx, query, search, pattern, stateID, issueID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list statutes: %w", err)
	}
	defer rows.Close()

	var statutes []model.StatuteWithNames
	for rows.Next() {
		var sn model.StatuteWithNames
		err := rows.Scan(
			&sn.ID, &sn.StateID, &sn.IssueID, &sn.IssueInfo, &sn.TimeLimitType,
			&sn.TimeLimitMin, &sn.TimeLimitMax, &sn.Duration, &sn.Details,
			&sn.CodeReference, &sn.OfficialSourceURL, &sn.OtherSourceURL,
			&sn.ConditionsExceptions, &sn.Examples, &sn.Tolling, &sn.UpdatedBy, &sn.UpdatedAt,
			&sn.StateName, &sn.IssueName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan statute: %w", err)
		}
		statutes = append(statutes, sn)
	}

	return statutes, total, rows.Err()
}

// GetDetail retrieves the public lookup payload for a state/issue slug
// pair: the statute joined with state, issue, and the state's
// small-claims row when one exists
func (s *StatuteStore) GetDetail(ctx context.Context, stateSlug, issueSlug string) (*model.StatuteDetail, error) {
	query := `
		SELECT s.name, s.state_code, i.name, i.issue_group, i.description,
		       sc.small_claims_cap, sc.small_claims_info,` + statuteColumns + `
		FROM statutes st
		JOIN states s ON st.state_id = s.id
		JOIN issues i ON st.issue_id = i.id
		LEFT JOIN small_claims sc ON s.id = sc.state_id
		WHERE s.slug = $1 AND i.slug = $2
	`

	var d model.StatuteDetail
	err := s.db.QueryRowContext(ctx, query, stateSlug, issueSlug).Scan(
		&d.StateName, &d.StateCode, &d.IssueName, &d.IssueGroup, &d.IssueDesc,
		&d.SmallClaimsCap, &d.SmallClaimsInfo,
		&d.ID, &d.StateID, &d.IssueID, &d.IssueInfo, &d.TimeLimitType,
		&d.TimeLimitMin, &d.TimeLimitMax, &d.Duration, &d.Details,
		&d.CodeReference, &d.OfficialSourceURL, &d.OtherSourceURL,
		&d.ConditionsExceptions, &d.Examples, &d.Tolling, &d.UpdatedBy, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statute detail %s/%s: %w", stateSlug, issueSlug, err)
	}

	return &d, nil
}

// SitemapEntry is one live state/issue combination for the sitemap
type SitemapEntry struct {
	StateSlug string
	IssueSlug string
	UpdatedAt sql.NullTime
}

// GetSitemapEntries retrieves every live state/issue combination
func (s *StatuteStore) GetSitemapEntries(ctx context.Context) ([]SitemapEntry, error) {
	query := `
		SELECT s.slug, i.slug, st.updated_dt
		FROM statutes st
		JOIN states s ON st.state_id = s.id
		JOIN issues i ON st.issue_id = i.id
		ORDER BY s.slug, i.slug
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get sitemap entries: %w", err)
	}
	defer rows.Close()

	var entries []SitemapEntry
	for rows.Next() {
		var e SitemapEntry
		if err := rows.Scan(&e.StateSlug, &e.IssueSlug, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sitemap entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
