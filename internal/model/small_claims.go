package model

import (
	"database/sql"
	"time"
)

// SmallClaim represents the live small-claims row for a state.
// Cap is null when the state has no small-claims limit.
type SmallClaim struct {
	ID        int
	StateID   int
	Cap       sql.NullFloat64
	Info      sql.NullString
	UpdatedBy string
	UpdatedAt time.Time
}

// SmallClaimWithState pairs a SmallClaim with its state display name
type SmallClaimWithState struct {
	SmallClaim
	StateName string
}
