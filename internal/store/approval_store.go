package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/statutecheck/statutecheck/internal/model"
)

// ErrNotPending is returned by approve/reject transitions when the queue
// row is missing or has already been decided. The first caller to observe
// a PENDING row wins; everyone else gets this.
var ErrNotPending = errors.New("approval request is not pending")

// ApprovalStore handles the change queue tables and owns the only write
// paths into the live small_claims and statutes tables. An approval's
// live-table mutation and its status flip always commit together.
type ApprovalStore struct {
	db *sql.DB
}

// NewApprovalStore creates a new ApprovalStore
func NewApprovalStore(db *sql.DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

// --- Small claims queue ---

// EnqueueSmallClaims stages one small-claims change as a PENDING row
func (s *ApprovalStore) EnqueueSmallClaims(ctx context.Context, a *model.SmallClaimsApproval) error {
	query := `
		INSERT INTO small_claims_approvals
			(claim_id, state_id, small_claims_cap, small_claims_info, action_type, status, submitted_by, submitted_dt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	a.Status = model.StatusPending
	err := s.db.QueryRowContext(ctx, query,
		a.ClaimID, a.StateID, a.Cap, a.Info, a.ActionType, a.Status, a.SubmittedBy, time.Now(),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to enqueue small claims approval: %w", err)
	}
	return nil
}

// GetSmallClaimsApproval retrieves a queue row with its state name
func (s *ApprovalStore) GetSmallClaimsApproval(ctx context.Context, id int) (*model.SmallClaimsApproval, error) {
	query := `
		SELECT sca.id, sca.claim_id, sca.state_id, sca.small_claims_cap, sca.small_claims_info,
		       sca.action_type, sca.status, sca.submitted_by, sca.submitted_dt, s.name
		FROM small_claims_approvals sca
		JOIN states s ON sca.state_id = s.id
		WHERE sca.id = $1
	`

	var a model.SmallClaimsApproval
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.ClaimID, &a.StateID, &a.Cap, &a.Info,
		&a.ActionType, &a.Status, &a.SubmittedBy, &a.SubmittedAt, &a.StateName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get small claims approval %d: %w", id, err)
	}

	return &a, nil
}

// ListPendingSmallClaims retrieves a page of PENDING rows matching a
// state-name search, newest first, plus the total count
func (s *ApprovalStore) ListPendingSmallClaims(ctx context.Context, search string, limit, offset int) ([]model.SmallClaimsApproval, int, error) {
	pattern := "%" + search + "%"

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM small_claims_approvals sca
		JOIN states s ON sca.state_id = s.id
		WHERE sca.status = 'PENDING' AND s.name ILIKE $1
	`
	if err := s.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending small claims approvals: %w", err)
	}

	query := `
		SELECT sca.id, sca.claim_id, sca.state_id, sca.small_claims_cap, sca.small_claims_info,
		       sca.action_type, sca.status, sca.submitted_by, sca.submitted_dt, s.name
		FROM small_claims_approvals sca
		JOIN states s ON sca.state_id = s.id
		WHERE sca.status = 'PENDING' AND s.name ILIKE $1
		ORDER BY sca.submitted_dt DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending small claims approvals: %w", err)
	}
	defer rows.Close()

	var approvals []model.SmallClaimsApproval
	for rows.Next() {
		var a model.SmallClaimsApproval
		err := rows.Scan(
			&a.ID, &a.ClaimID, &a.StateID, &a.Cap, &a.Info,
			&a.ActionType, &a.Status, &a.SubmittedBy, &a.SubmittedAt, &a.StateName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan small claims approval: %w", err)
		}
		approvals = append(approvals, a)
	}

	return approvals, total, rows.Err()
}

// ApproveSmallClaims applies a staged small-claims change to the live
// table and flips the row to APPROVED in one transaction. The row lock
// plus the status compare-and-set guarantee at most one application.
func (s *ApprovalStore) ApproveSmallClaims(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT claim_id, state_id, small_claims_cap, small_claims_info, action_type, status, submitted_by
		FROM small_claims_approvals
		WHERE id = $1
		FOR UPDATE
	`

	var a model.SmallClaimsApproval
	err = tx.QueryRowContext(ctx, lockQuery, id).Scan(
		&a.ClaimID, &a.StateID, &a.Cap, &a.Info, &a.ActionType, &a.Status, &a.SubmittedBy,
	)
	if err == sql.ErrNoRows {
		return ErrNotPending
	}
	if err != nil {
		return fmt.Errorf("failed to lock small claims approval %d: %w", id, err)
	}
	if a.Status != model.StatusPending {
		return ErrNotPending
	}

	now := time.Now()
	switch a.ActionType {
	case model.ActionInsert:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO small_claims (state_id, small_claims_cap, small_claims_info, updated_by, updated_dt)
			VALUES ($1, $2, $3, $4, $5)
		`, a.StateID, a.Cap, a.Info, a.SubmittedBy, now)
	case model.ActionUpdate:
		_, err = tx.ExecContext(ctx, `
			UPDATE small_claims
			SET state_id = $1, small_claims_cap = $2, small_claims_info = $3, updated_by = $4, updated_dt = $5
			WHERE id = $6
		`, a.StateID, a.Cap, a.Info, a.SubmittedBy, now, a.ClaimID)
	case model.ActionDelete:
		// Target already gone counts as satisfied
		_, err = tx.ExecContext(ctx, `DELETE FROM small_claims WHERE id = $1`, a.ClaimID)
	default:
		return fmt.Errorf("unknown action type %q on small claims approval %d", a.ActionType, id)
	}
	if err != nil {
		return fmt.Errorf("failed to apply small claims approval %d: %w", id, err)
	}

	if err := flipStatus(ctx, tx, "small_claims_approvals", id, model.StatusApproved); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit small claims approval %d: %w", id, err)
	}
	return nil
}

// RejectSmallClaims flips a PENDING row to REJECTED. No live-table effect.
func (s *ApprovalStore) RejectSmallClaims(ctx context.Context, id int) error {
	return s.reject(ctx, "small_claims_approvals", id)
}

// --- Statute queue ---

// EnqueueStatute stages one statute change as a PENDING row
func (s *ApprovalStore) EnqueueStatute(ctx context.Context, a *model.StatuteApproval) error {
	query := `
		INSERT INTO statute_approvals
			(statute_id, state_id, issue_id, issue_info, time_limit_type, time_limit_min, time_limit_max,
			 duration, details, code_reference, official_source_url, other_source_url,
			 conditions_exceptions, examples, tolling, action_type, status, submitted_by, submitted_dt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	a.Status = model.StatusPending
	err := s.db.QueryRowContext(ctx, query,
		a.StatuteID, a.StateID, a.IssueID, a.IssueInfo, a.TimeLimitType, a.TimeLimitMin, a.TimeLimitMax,
		a.Duration, a.Details, a.CodeReference, a.OfficialSourceURL, a.OtherSourceURL,
		a.ConditionsExceptions, a.Examples, a.Tolling, a.ActionType, a.Status, a.SubmittedBy, time.Now(),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to enqueue statute approval: %w", err)
	}
	return nil
}

const statuteApprovalColumns = `
	sa.id, sa.statute_id, sa.state_id, sa.issue_id, sa.issue_info, sa.time_limit_type,
	sa.time_limit_min, sa.time_limit_max, sa.duration, sa.details, sa.code_reference,
	sa.official_source_url, sa.other_source_url, sa.conditions_exceptions, sa.examples,
	sa.tolling, sa.action_type, sa.status, sa.submitted_by, sa.submitted_dt`

func scanStatuteApproval(row interface{ Scan(...any) error }, a *model.StatuteApproval, withNames bool) error {
	dest := []any{
		&a.ID, &a.StatuteID, &a.StateID, &a.IssueID, &a.IssueInfo, &a.TimeLimitType,
		&a.TimeLimitMin, &a.TimeLimitMax, &a.Duration, &a.Details, &a.CodeReference,
		&a.OfficialSourceURL, &a.OtherSourceURL, &a.ConditionsExceptions, &a.Examples,
		&a.Tolling, &a.ActionType, &a.Status, &a.SubmittedBy, &a.SubmittedAt,
	}
	if withNames {
		dest = append(dest, &a.StateName, &a.IssueName)
	}
	return row.Scan(dest...)
}

// GetStatuteApproval retrieves a queue row with its state and issue names
func (s *ApprovalStore) GetStatuteApproval(ctx context.Context, id int) (*model.StatuteApproval, error) {
	query := `
		SELECT` + statuteApprovalColumns + `, s.name, i.name
		FROM statute_approvals sa
		JOIN states s ON sa.state_id = s.id
		JOIN issues i ON sa.issue_id = i.id
		WHERE sa.id = $1
	`

	var a model.StatuteApproval
	err := scanStatuteApproval(s.db.QueryRowContext(ctx, query, id), &a, true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statute approval %d: %w", id, err)
	}

	return &a, nil
}

// ListPendingStatutes retrieves a page of PENDING rows whose state or
// issue name matches the search, newest first, plus the total count
func (s *ApprovalStore) ListPendingStatutes(ctx context.Context, search string, limit, offset int) ([]model.StatuteApproval, int, error) {
	pattern := "%" + search + "%"

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM statute_approvals sa
		JOIN states s ON sa.state_id = s.id
		JOIN issues i ON sa.issue_id = i.id
		WHERE sa.status = 'PENDING' AND (s.name ILIKE $1 OR i.name ILIKE $1)
	`
	if err := s.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending statute approvals: %w", err)
	}

	query := `
		SELECT` + statuteApprovalColumns + `, s.name, i.name
		FROM statute_approvals sa
		JOIN states s ON sa.state_id = s.id
		JOIN issues i ON sa.issue_id = i.id
		WHERE sa.status = 'PENDING' AND (s.name ILIKE $1 OR i.name ILIKE $1)
		ORDER BY sa.submitted_dt DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending statute approvals: %w", err)
	}
	defer rows.Close()

	var approvals []model.StatuteApproval
	for rows.Next() {
		var a model.StatuteApproval
		if err := scanStatuteApproval(rows, &a, true); err != nil {
			return nil, 0, fmt.Errorf("failed to scan statute approval: %w", err)
		}
		approvals = append(approvals, a)
	}

	return approvals, total, rows.Err()
}

// ApproveStatute applies a staged statute change to the live table and
// flips the row to APPROVED in one transaction
func (s *ApprovalStore) ApproveStatute(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT` + statuteApprovalColumns + `
		FROM statute_approvals sa
		WHERE sa.id = $1
		FOR UPDATE
	`

	var a model.StatuteApproval
	err = scanStatuteApproval(tx.QueryRowContext(ctx, lockQuery, id), &a, false)
	if err == sql.ErrNoRows {
		return ErrNotPending
	}
	if err != nil {
		return fmt.Errorf("failed to lock statute approval %d: %w", id, err)
	}
	if a.Status != model.StatusPending {
		return ErrNotPending
	}

	now := time.Now()
	switch a.ActionType {
	case model.ActionInsert:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO statutes
				(state_id, issue_id, issue_info, time_limit_type, time_limit_min, time_limit_max,
				 duration, details, code_reference, official_source_url, other_source_url,
				 conditions_exceptions, examples, tolling, updated_by, updated_dt)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`, a.StateID, a.IssueID, a.IssueInfo, a.TimeLimitType, a.TimeLimitMin, a.TimeLimitMax,
			a.Duration, a.Details, a.CodeReference, a.OfficialSourceURL, a.OtherSourceURL,
			a.ConditionsExceptions, a.Examples, a.Tolling, a.SubmittedBy, now)
	case model.ActionUpdate:
		_, err = tx.ExecContext(ctx, `
			UPDATE statutes
			SET state_id = $1, issue_id = $2, issue_info = $3, time_limit_type = $4,
			    time_limit_min = $5, time_limit_max = $6, duration = $7, details = $8,
			    code_reference = $9, official_source_url = $10, other_source_url = $11,
			    conditions_exceptions = $12, examples = $13, tolling = $14,
			    updated_by = $15, updated_dt = $16
			WHERE id = $17
		`, a.StateID, a.IssueID, a.IssueInfo, a.TimeLimitType, a.TimeLimitMin, a.TimeLimitMax,
			a.Duration, a.Details, a.CodeReference, a.OfficialSourceURL, a.OtherSourceURL,
			a.ConditionsExceptions, a.Examples, a.Tolling, a.SubmittedBy, now, a.StatuteID)
	case model.ActionDelete:
		// Target already gone counts as satisfied
		_, err = tx.ExecContext(ctx, `DELETE FROM statutes WHERE id = $1`, a.StatuteID)
	default:
		return fmt.Errorf("unknown action type %q on statute approval %d", a.ActionType, id)
	}
	if err != nil {
		return fmt.Errorf("failed to apply statute approval %d: %w", id, err)
	}

	if err := flipStatus(ctx, tx, "statute_approvals", id, model.StatusApproved); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit statute approval %d: %w", id, err)
	}
	return nil
}

// RejectStatute flips a PENDING row to REJECTED. No live-table effect.
func (s *ApprovalStore) RejectStatute(ctx context.Context, id int) error {
	return s.reject(ctx, "statute_approvals", id)
}

// flipStatus moves a queue row out of PENDING with a compare-and-set so
// a decided row can never be decided again
func flipStatus(ctx context.Context, tx *sql.Tx, table string, id int, to model.ApprovalStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET status = $1 WHERE id = $2 AND status = 'PENDING'`, to, id)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", table, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s %d: %w", table, id, err)
	}
	if affected == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *ApprovalStore) reject(ctx context.Context, table string, id int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET status = 'REJECTED' WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return fmt.Errorf("failed to reject %s %d: %w", table, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s %d: %w", table, id, err)
	}
	if affected == 0 {
		return ErrNotPending
	}
	return nil
}
