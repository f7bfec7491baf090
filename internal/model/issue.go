package model

import (
	"database/sql"
	"time"
)

// Issue represents a legal issue category (e.g. "Breach of Contract")
type Issue struct {
	ID          int
	Name        string
	Slug        string
	Description sql.NullString
	IssueGroup  sql.NullString
	UpdatedBy   sql.NullString
	UpdatedAt   time.Time
}
