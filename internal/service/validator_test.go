package service

import (
	"testing"

	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStateLookup = map[string]int{"california": 1, "texas": 2}
	testIssueLookup = map[string]int{"personal injury": 10, "written contracts": 11}
)

func validBulkRow() BulkRow {
	return BulkRow{
		State:         "California",
		Issue:         "Personal Injury",
		TimeLimitType: "range",
		MinTime:       "2",
		MaxTime:       "4",
		Duration:      "years",
		Details:       "  Some details  ",
	}
}

func TestValidateRow(t *testing.T) {
	row := validBulkRow()
	valid, err := ValidateRow(row, testStateLookup, testIssueLookup)
	require.NoError(t, err)

	assert.Equal(t, 1, valid.StateID)
	assert.Equal(t, 10, valid.IssueID)
	assert.Equal(t, model.TimeLimitRange, valid.TimeLimitType)
	assert.Equal(t, 2.0, valid.TimeLimitMin)
	assert.Equal(t, 4.0, valid.TimeLimitMax)
	assert.Equal(t, model.DurationYears, valid.Duration)
	assert.Equal(t, "Some details", valid.Details)
}

func TestValidateRow_ExactCopiesMinToMax(t *testing.T) {
	row := validBulkRow()
	row.TimeLimitType = "exact"
	row.MinTime = "3"
	row.MaxTime = ""

	valid, err := ValidateRow(row, testStateLookup, testIssueLookup)
	require.NoError(t, err)
	assert.Equal(t, 3.0, valid.TimeLimitMin)
	assert.Equal(t, 3.0, valid.TimeLimitMax)
}

func TestValidateRow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BulkRow)
		wantErr error
	}{
		{"unknown state", func(r *BulkRow) { r.State = "Atlantis" }, ErrUnknownReference},
		{"unknown issue", func(r *BulkRow) { r.Issue = "Piracy" }, ErrUnknownReference},
		{"bad limit type", func(r *BulkRow) { r.TimeLimitType = "approximate" }, ErrInvalidEnum},
		{"bad duration", func(r *BulkRow) { r.Duration = "weeks" }, ErrInvalidEnum},
		{"unparseable min", func(r *BulkRow) { r.MinTime = "two" }, ErrNumericParse},
		{"unparseable max", func(r *BulkRow) { r.MaxTime = "four" }, ErrNumericParse},
		{"exact with max", func(r *BulkRow) {
			r.TimeLimitType = "exact"
			r.MinTime = "3"
			r.MaxTime = "5"
		}, ErrLogic},
		{"exact without min", func(r *BulkRow) {
			r.TimeLimitType = "exact"
			r.MinTime = ""
			r.MaxTime = ""
		}, ErrLogic},
		{"range missing min", func(r *BulkRow) { r.MinTime = "" }, ErrLogic},
		{"range missing max", func(r *BulkRow) { r.MaxTime = "" }, ErrLogic},
		{"conditional missing max", func(r *BulkRow) {
			r.TimeLimitType = "conditional"
			r.MaxTime = ""
		}, ErrLogic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validBulkRow()
			tt.mutate(&row)
			_, err := ValidateRow(row, testStateLookup, testIssueLookup)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// Reference checks run before enum and numeric checks, so a row that is
// wrong in several ways reports the reference problem.
func TestValidateRow_FirstFailureWins(t *testing.T) {
	row := validBulkRow()
	row.State = "Atlantis"
	row.TimeLimitType = "approximate"
	row.MinTime = "two"

	_, err := ValidateRow(row, testStateLookup, testIssueLookup)
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestValidateRow_LookupIsCaseInsensitive(t *testing.T) {
	row := validBulkRow()
	row.State = "  TEXAS "
	row.Issue = "WRITTEN contracts"

	valid, err := ValidateRow(row, testStateLookup, testIssueLookup)
	require.NoError(t, err)
	assert.Equal(t, 2, valid.StateID)
	assert.Equal(t, 11, valid.IssueID)
}
