package model

import (
	"database/sql"
	"strings"
	"time"
)

// TimeLimitType describes how a statute's time limit is expressed
type TimeLimitType string

const (
	TimeLimitExact       TimeLimitType = "exact"
	TimeLimitRange       TimeLimitType = "range"
	TimeLimitConditional TimeLimitType = "conditional"
)

// ParseTimeLimitType resolves a time limit type case-insensitively
func ParseTimeLimitType(s string) (TimeLimitType, bool) {
	switch TimeLimitType(strings.ToLower(strings.TrimSpace(s))) {
	case TimeLimitExact:
		return TimeLimitExact, true
	case TimeLimitRange:
		return TimeLimitRange, true
	case TimeLimitConditional:
		return TimeLimitConditional, true
	}
	return "", false
}

// DurationUnit is the unit the time limit bounds are measured in
type DurationUnit string

const (
	DurationYears  DurationUnit = "years"
	DurationMonths DurationUnit = "months"
	DurationDays   DurationUnit = "days"
)

// ParseDurationUnit resolves a duration unit case-insensitively
func ParseDurationUnit(s string) (DurationUnit, bool) {
	switch DurationUnit(strings.ToLower(strings.TrimSpace(s))) {
	case DurationYears:
		return DurationYears, true
	case DurationMonths:
		return DurationMonths, true
	case DurationDays:
		return DurationDays, true
	}
	return "", false
}

// Statute represents the live statute-of-limitations row for a
// state/issue pair. Invariant: exact limits have min == max; range and
// conditional limits have min < max.
type Statute struct {
	ID                   int
	StateID              int
	IssueID              int
	IssueInfo            sql.NullString
	TimeLimitType        TimeLimitType
	TimeLimitMin         float64
	TimeLimitMax         float64
	Duration             DurationUnit
	Details              sql.NullString
	CodeReference        sql.NullString
	OfficialSourceURL    sql.NullString
	OtherSourceURL       sql.NullString
	ConditionsExceptions sql.NullString
	Examples             sql.NullString
	Tolling              sql.NullString
	UpdatedBy            string
	UpdatedAt            time.Time
}

// StatuteWithNames pairs a Statute with its state and issue display names
type StatuteWithNames struct {
	Statute
	StateName string
	IssueName string
}

// StatuteDetail is the public lookup page payload: the statute joined
// with state, issue, and (when present) the state's small-claims row
type StatuteDetail struct {
	StateName      string
	StateCode      string
	IssueName      string
	IssueGroup     sql.NullString
	IssueDesc      sql.NullString
	SmallClaimsCap sql.NullFloat64
	SmallClaimsInfo sql.NullString
	Statute
}
