package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/statutecheck/statutecheck/internal/auth"
)

// maxFailureReasons caps how many per-row failure messages the stats
// carry back to the operator
const maxFailureReasons = 10

// ImportStats tracks bulk import statistics
type ImportStats struct {
	Total    int
	New      int
	Updated  int
	Failed   int
	Failures []string

	omittedFailures int
}

// StatuteFinder resolves a (state, issue) pair to a live statute id so
// the importer can stage an update instead of an insert
type StatuteFinder interface {
	FindByPair(ctx context.Context, stateID, issueID int) (int, error)
}

// LookupSource supplies a case-insensitive display-name to id mapping
type LookupSource interface {
	NameLookup(ctx context.Context) (map[string]int, error)
}

// Importer feeds validated spreadsheet rows into the change queue. Rows
// never touch the live tables directly; each accepted row becomes one
// PENDING approval.
type Importer struct {
	queue     *ChangeQueue
	statutes  StatuteFinder
	states    LookupSource
	issues    LookupSource
	maxRows   int
	logger    *log.Logger
	errLogger *log.Logger
}

// NewImporter creates a new Importer
func NewImporter(queue *ChangeQueue, statutes StatuteFinder, states, issues LookupSource, maxRows int) *Importer {
	return &Importer{
		queue:     queue,
		statutes:  statutes,
		states:    states,
		issues:    issues,
		maxRows:   maxRows,
		logger:    log.New(os.Stdout, "", log.LstdFlags),
		errLogger: log.New(os.Stderr, "ERROR: ", log.LstdFlags),
	}
}

// ImportCSV validates and enqueues every row of a CSV batch on behalf of
// the actor. A batch over the row limit is rejected whole before any row
// is processed; after that gate, failures are per-row and never abort
// the batch.
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader, actor auth.Actor) (*ImportStats, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := columnIndex(header)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}

	if len(records) > i.maxRows {
		return nil, fmt.Errorf("batch of %d rows exceeds the limit of %d; nothing was imported", len(records), i.maxRows)
	}

	stateLookup, err := i.states.NameLookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state lookup: %w", err)
	}
	issueLookup, err := i.issues.NameLookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load issue lookup: %w", err)
	}

	stats := &ImportStats{Total: len(records)}

	for idx, record := range records {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		line := idx + 2 // header is line 1

		row := rowFromRecord(record, columns)
		valid, err := ValidateRow(row, stateLookup, issueLookup)
		if err != nil {
			i.errLogger.Printf("Row %d rejected: %v", line, err)
			stats.fail(line, err)
			continue
		}

		payload := payloadFromValidRow(valid)

		targetID, err := i.statutes.FindByPair(ctx, valid.StateID, valid.IssueID)
		if err != nil {
			i.errLogger.Printf("Row %d lookup failed: %v", line, err)
			stats.fail(line, err)
			continue
		}

		if targetID > 0 {
			_, err = i.queue.SubmitStatuteUpdate(ctx, actor, targetID, payload)
			if err != nil {
				i.errLogger.Printf("Row %d enqueue failed: %v", line, err)
				stats.fail(line, err)
				continue
			}
			stats.Updated++
		} else {
			_, err = i.queue.SubmitStatuteInsert(ctx, actor, payload)
			if err != nil {
				i.errLogger.Printf("Row %d enqueue failed: %v", line, err)
				stats.fail(line, err)
				continue
			}
			stats.New++
		}
	}

	return stats, nil
}

// PrintSummary logs import totals the way operators expect to read them
func (i *Importer) PrintSummary(stats *ImportStats) {
	i.logger.Println("")
	i.logger.Println("=== Import Summary ===")
	i.logger.Printf("Total rows:   %d", stats.Total)
	i.logger.Printf("New:          %d", stats.New)
	i.logger.Printf("Updated:      %d", stats.Updated)
	i.logger.Printf("Failed:       %d", stats.Failed)
	for _, reason := range stats.Failures {
		i.logger.Printf("  - %s", reason)
	}
	if stats.omittedFailures > 0 {
		i.logger.Printf("  ... and %d more", stats.omittedFailures)
	}
}

func (s *ImportStats) fail(line int, err error) {
	s.Failed++
	if len(s.Failures) < maxFailureReasons {
		s.Failures = append(s.Failures, fmt.Sprintf("row %d: %v", line, err))
	} else {
		s.omittedFailures++
	}
}

// OmittedFailures reports how many failure reasons were truncated from
// the Failures list
func (s *ImportStats) OmittedFailures() int {
	return s.omittedFailures
}

func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func rowFromRecord(record []string, columns map[string]int) BulkRow {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	return BulkRow{
		State:                field("state"),
		Issue:                field("issue"),
		TimeLimitType:        field("time_limit_type"),
		MinTime:              field("min_time"),
		MaxTime:              field("max_time"),
		Duration:             field("duration"),
		Details:              field("details"),
		CodeReference:        field("code_reference"),
		OfficialSourceURL:    field("official_source_url"),
		OtherSourceURL:       field("other_source_url"),
		ConditionsExceptions: field("conditions_exceptions"),
		Examples:             field("examples"),
		Tolling:              field("tolling"),
		IssueInfo:            field("issue_info"),
	}
}

func payloadFromValidRow(v *ValidRow) StatutePayload {
	return StatutePayload{
		StateID:              v.StateID,
		IssueID:              v.IssueID,
		IssueInfo:            nullString(v.IssueInfo),
		TimeLimitType:        v.TimeLimitType,
		TimeLimitMin:         v.TimeLimitMin,
		TimeLimitMax:         v.TimeLimitMax,
		Duration:             v.Duration,
		Details:              nullString(v.Details),
		CodeReference:        nullString(v.CodeReference),
		OfficialSourceURL:    nullString(v.OfficialSourceURL),
		OtherSourceURL:       nullString(v.OtherSourceURL),
		ConditionsExceptions: nullString(v.ConditionsExceptions),
		Examples:             nullString(v.Examples),
		Tolling:              nullString(v.Tolling),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
