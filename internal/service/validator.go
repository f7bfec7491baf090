package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/statutecheck/statutecheck/internal/model"
)

// BulkRow is one raw spreadsheet row before validation. All fields are
// strings exactly as parsed from the upload.
type BulkRow struct {
	State                string
	Issue                string
	TimeLimitType        string
	MinTime              string
	MaxTime              string
	Duration             string
	Details              string
	CodeReference        string
	OfficialSourceURL    string
	OtherSourceURL       string
	ConditionsExceptions string
	Examples             string
	Tolling              string
	IssueInfo            string
}

// ValidRow is a normalized bulk row ready to enqueue: references
// resolved to ids, enums validated, bounds parsed and normalized
type ValidRow struct {
	StateID              int
	IssueID              int
	TimeLimitType        model.TimeLimitType
	TimeLimitMin         float64
	TimeLimitMax         float64
	Duration             model.DurationUnit
	Details              string
	CodeReference        string
	OfficialSourceURL    string
	OtherSourceURL       string
	ConditionsExceptions string
	Examples             string
	Tolling              string
	IssueInfo            string
}

// ValidateRow checks one bulk row against the supplied lookup mappings.
// Pure: no side effects, no store access. Checks run in a fixed order and
// the first failure wins.
func ValidateRow(row BulkRow, stateLookup, issueLookup map[string]int) (*ValidRow, error) {
	stateID, ok := stateLookup[strings.ToLower(strings.TrimSpace(row.State))]
	if !ok {
		return nil, fmt.Errorf("%w: state %q", ErrUnknownReference, row.State)
	}
	issueID, ok := issueLookup[strings.ToLower(strings.TrimSpace(row.Issue))]
	if !ok {
		return nil, fmt.Errorf("%w: issue %q", ErrUnknownReference, row.Issue)
	}

	limitType, ok := model.ParseTimeLimitType(row.TimeLimitType)
	if !ok {
		return nil, fmt.Errorf("%w: time_limit_type %q", ErrInvalidEnum, row.TimeLimitType)
	}

	duration, ok := model.ParseDurationUnit(row.Duration)
	if !ok {
		return nil, fmt.Errorf("%w: duration %q", ErrInvalidEnum, row.Duration)
	}

	minVal, minSet, err := parseOptionalNumber(row.MinTime)
	if err != nil {
		return nil, fmt.Errorf("%w: min_time %q", ErrNumericParse, row.MinTime)
	}
	maxVal, maxSet, err := parseOptionalNumber(row.MaxTime)
	if err != nil {
		return nil, fmt.Errorf("%w: max_time %q", ErrNumericParse, row.MaxTime)
	}

	switch limitType {
	case model.TimeLimitExact:
		if maxSet {
			return nil, fmt.Errorf("%w: exact limit must not carry max_time", ErrLogic)
		}
		if !minSet {
			return nil, fmt.Errorf("%w: exact limit requires min_time", ErrLogic)
		}
		maxVal = minVal
	default: // range and conditional share the same shape
		if !minSet || !maxSet {
			return nil, fmt.Errorf("%w: %s limit requires both min_time and max_time", ErrLogic, limitType)
		}
	}

	return &ValidRow{
		StateID:              stateID,
		IssueID:              issueID,
		TimeLimitType:        limitType,
		TimeLimitMin:         minVal,
		TimeLimitMax:         maxVal,
		Duration:             duration,
		Details:              strings.TrimSpace(row.Details),
		CodeReference:        strings.TrimSpace(row.CodeReference),
		OfficialSourceURL:    strings.TrimSpace(row.OfficialSourceURL),
		OtherSourceURL:       strings.TrimSpace(row.OtherSourceURL),
		ConditionsExceptions: strings.TrimSpace(row.ConditionsExceptions),
		Examples:             strings.TrimSpace(row.Examples),
		Tolling:              strings.TrimSpace(row.Tolling),
		IssueInfo:            strings.TrimSpace(row.IssueInfo),
	}, nil
}

// parseOptionalNumber parses a numeric field that may be absent.
// Returns set=false for an empty value.
func parseOptionalNumber(s string) (value float64, set bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}
