package model

// State represents a US state in the static lookup table
type State struct {
	ID        int
	Name      string
	Slug      string
	StateCode string
}
