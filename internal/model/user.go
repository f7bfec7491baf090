package model

import (
	"database/sql"
	"time"
)

// User represents a console account
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	RoleID       int
	RoleName     string
	UpdatedBy    sql.NullString
	UpdatedAt    time.Time
}

// Role represents a named permission set. Permissions holds the raw
// JSON matrix from the roles table; internal/auth parses and validates it.
type Role struct {
	ID          int
	Name        string
	Permissions string
}

// LoginLog is one recorded login attempt
type LoginLog struct {
	ID                int
	UsernameAttempted string
	Status            string
	IPAddress         sql.NullString
	UserAgent         sql.NullString
	LoginAt           time.Time
}

// IssueReport is a data-correction report submitted from the public site.
// IsValid stays null until staff triage it.
type IssueReport struct {
	ID             int
	Details        string
	ReporterEmail  sql.NullString
	OfficialSource sql.NullString
	PageContext    sql.NullString
	IsValid        sql.NullBool
	CreatedAt      time.Time
}
