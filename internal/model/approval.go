package model

import (
	"database/sql"
	"time"
)

// ActionType is the kind of change a queue row stages
type ActionType string

const (
	ActionInsert ActionType = "INSERT"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// ApprovalStatus is the review state of a queue row.
// PENDING moves to APPROVED or REJECTED exactly once and never back.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// SmallClaimsApproval is one staged small-claims change. ClaimID is null
// for INSERT rows; payload fields are null on DELETE rows, which carry
// only enough to identify the target.
type SmallClaimsApproval struct {
	ID          int
	ClaimID     sql.NullInt64
	StateID     int
	Cap         sql.NullFloat64
	Info        sql.NullString
	ActionType  ActionType
	Status      ApprovalStatus
	SubmittedBy string
	SubmittedAt time.Time

	// Joined for listings
	StateName string
}

// StatuteApproval is one staged statute change, mirroring Statute's
// fields as nullables for the same reason as SmallClaimsApproval.
type StatuteApproval struct {
	ID                   int
	StatuteID            sql.NullInt64
	StateID              int
	IssueID              int
	IssueInfo            sql.NullString
	TimeLimitType        sql.NullString
	TimeLimitMin         sql.NullFloat64
	TimeLimitMax         sql.NullFloat64
	Duration             sql.NullString
	Details              sql.NullString
	CodeReference        sql.NullString
	OfficialSourceURL    sql.NullString
	OtherSourceURL       sql.NullString
	ConditionsExceptions sql.NullString
	Examples             sql.NullString
	Tolling              sql.NullString
	ActionType           ActionType
	Status               ApprovalStatus
	SubmittedBy          string
	SubmittedAt          time.Time

	// Joined for listings
	StateName string
	IssueName string
}
