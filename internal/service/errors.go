package service

import "errors"

// Operation errors surfaced to the caller. None of these are retried;
// every failure is reported for manual resubmission.
var (
	// ErrPermissionDenied means the actor lacks the resource/action flag
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateKey means an insert or update would collide with a live
	// record under a different id; the request is never enqueued
	ErrDuplicateKey = errors.New("a live record already exists for this key")

	// ErrNotFound means the target record or approval does not exist
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState means approve/reject hit a missing or already
	// decided queue row, usually a race or a stale view
	ErrInvalidState = errors.New("approval request is missing or already decided")

	// ErrInvalidPayload means a direct submission violates the time-limit
	// shape invariant
	ErrInvalidPayload = errors.New("invalid change payload")
)

// Bulk-row validation errors. Accumulated per row; they never abort a batch.
var (
	ErrUnknownReference = errors.New("unknown reference")
	ErrInvalidEnum      = errors.New("invalid enum value")
	ErrNumericParse     = errors.New("invalid number")
	ErrLogic            = errors.New("inconsistent time limit")
)
