package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/statutecheck/statutecheck/internal/model"
)

// LoginLogStore records and queries login attempts
type LoginLogStore struct {
	db *sql.DB
}

// NewLoginLogStore creates a new LoginLogStore
func NewLoginLogStore(db *sql.DB) *LoginLogStore {
	return &LoginLogStore{db: db}
}

// Record inserts one login attempt
func (s *LoginLogStore) Record(ctx context.Context, username, status, ipAddress, userAgent string) error {
	query := `
		INSERT INTO login_logs (username_attempted, status, ip_address, user_agent, login_dt)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query, username, status, ipAddress, userAgent, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record login attempt for %s: %w", username, err)
	}
	return nil
}

// LoginLogFilter narrows a login-log listing
type LoginLogFilter struct {
	Username  string
	Status    string
	StartDate string
	EndDate   string
}

// List retrieves a page of login attempts matching the filter, newest
// first, plus the total count
func (s *LoginLogStore) List(ctx context.Context, f LoginLogFilter, limit, offset int) ([]model.LoginLog, int, error) {
	conditions := `($1 = '' OR username_attempted ILIKE $2)
		AND ($3 = '' OR status = $3)
		AND ($4 = '' OR login_dt::date >= $4::date)
		AND ($5 = '' OR login_dt::date <= $5::date)`
	pattern := "%" + f.Username + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM login_logs WHERE ` + conditions
	err := s.db.QueryRowContext(ctx, countQuery, f.Username, pattern, f.Status, f.StartDate, f.EndDate).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count login logs: %w", err)
	}

	query := `
		SELECT id, username_attempted, status, ip_address, user_agent, login_dt
		FROM login_logs
		WHERE ` + conditions + `
		ORDER BY login_dt DESC
		LIMIT $6 OFFSET $7
	`

	rows, err := s.db.QueryContext(ctx, query, f.Username, pattern, f.Status, f.StartDate, f.EndDate, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list login logs: %w", err)
	}
	defer rows.Close()

	var logs []model.LoginLog
	for rows.Next() {
		var l model.LoginLog
		if err := rows.Scan(&l.ID, &l.UsernameAttempted, &l.Status, &l.IPAddress, &l.UserAgent, &l.LoginAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan login log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, total, rows.Err()
}
