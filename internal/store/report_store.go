package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/statutecheck/statutecheck/internal/model"
)

// ReportStore stores data-correction reports from the public site
type ReportStore struct {
	db *sql.DB
}

// NewReportStore creates a new ReportStore
func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Create inserts a new report. IsValid stays null until staff triage it.
func (s *ReportStore) Create(ctx context.Context, r *model.IssueReport) error {
	query := `
		INSERT INTO issue_reports (details, reporter_email, official_source, page_context, is_valid, created_at)
		VALUES ($1, $2, $3, $4, NULL, $5)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		r.Details, r.ReporterEmail, r.OfficialSource, r.PageContext, time.Now(),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to create issue report: %w", err)
	}
	return nil
}
