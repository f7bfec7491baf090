package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/statutecheck/statutecheck/internal/store"
)

// SmallClaimsReader is the read-side view of the live small_claims table
// the queue needs for its enqueue guards
type SmallClaimsReader interface {
	GetByID(ctx context.Context, id int) (*model.SmallClaim, error)
	ExistsForState(ctx context.Context, stateID, excludeID int) (bool, error)
}

// StatuteReader is the read-side view of the live statutes table the
// queue needs for its enqueue guards
type StatuteReader interface {
	GetByID(ctx context.Context, id int) (*model.Statute, error)
	ExistsForPair(ctx context.Context, stateID, issueID, excludeID int) (bool, error)
}

// ApprovalQueue is the staging table plus its state transitions.
// Approve transitions apply the live-table mutation and the status flip
// atomically; a missing or already decided row yields store.ErrNotPending.
type ApprovalQueue interface {
	EnqueueSmallClaims(ctx context.Context, a *model.SmallClaimsApproval) error
	ApproveSmallClaims(ctx context.Context, id int) error
	RejectSmallClaims(ctx context.Context, id int) error
	EnqueueStatute(ctx context.Context, a *model.StatuteApproval) error
	ApproveStatute(ctx context.Context, id int) error
	RejectStatute(ctx context.Context, id int) error
}

// ChangeQueue routes every content mutation through the approval queue.
// Nothing here writes the live tables directly; the queue applies
// approved changes itself.
type ChangeQueue struct {
	queue       ApprovalQueue
	smallClaims SmallClaimsReader
	statutes    StatuteReader
}

// NewChangeQueue creates a new ChangeQueue
func NewChangeQueue(queue ApprovalQueue, smallClaims SmallClaimsReader, statutes StatuteReader) *ChangeQueue {
	return &ChangeQueue{
		queue:       queue,
		smallClaims: smallClaims,
		statutes:    statutes,
	}
}

// SmallClaimsPayload carries the mutable fields of a small-claims record
type SmallClaimsPayload struct {
	StateID int
	Cap     sql.NullFloat64
	Info    sql.NullString
}

// StatutePayload carries the mutable fields of a statute record
type StatutePayload struct {
	StateID              int
	IssueID              int
	IssueInfo            sql.NullString
	TimeLimitType        model.TimeLimitType
	TimeLimitMin         float64
	TimeLimitMax         float64
	Duration             model.DurationUnit
	Details              sql.NullString
	CodeReference        sql.NullString
	OfficialSourceURL    sql.NullString
	OtherSourceURL       sql.NullString
	ConditionsExceptions sql.NullString
	Examples             sql.NullString
	Tolling              sql.NullString
}

// normalize enforces the time-limit shape invariant: exact limits carry
// a single positive value in both bounds, range and conditional limits
// need min < max
func (p *StatutePayload) normalize() error {
	if _, ok := model.ParseTimeLimitType(string(p.TimeLimitType)); !ok {
		return fmt.Errorf("%w: time limit type %q", ErrInvalidPayload, p.TimeLimitType)
	}
	if _, ok := model.ParseDurationUnit(string(p.Duration)); !ok {
		return fmt.Errorf("%w: duration unit %q", ErrInvalidPayload, p.Duration)
	}

	switch p.TimeLimitType {
	case model.TimeLimitExact:
		if p.TimeLimitMax != 0 && p.TimeLimitMax != p.TimeLimitMin {
			return fmt.Errorf("%w: exact limit cannot carry a distinct max", ErrInvalidPayload)
		}
		if p.TimeLimitMin <= 0 {
			return fmt.Errorf("%w: exact limit requires a time limit value", ErrInvalidPayload)
		}
		p.TimeLimitMax = p.TimeLimitMin
	default:
		if p.TimeLimitMin >= p.TimeLimitMax {
			return fmt.Errorf("%w: %s limit needs min < max", ErrInvalidPayload, p.TimeLimitType)
		}
	}
	return nil
}

// --- Small claims submissions ---

// SubmitSmallClaimsInsert stages a new small-claims record
func (q *ChangeQueue) SubmitSmallClaimsInsert(ctx context.Context, actor auth.Actor, p SmallClaimsPayload) (*model.SmallClaimsApproval, error) {
	if !actor.Can(auth.ResourceSmallClaims, auth.ActionCreate) {
		return nil, ErrPermissionDenied
	}

	exists, err := q.smallClaims.ExistsForState(ctx, p.StateID, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateKey
	}

	approval := &model.SmallClaimsApproval{
		StateID:     p.StateID,
		Cap:         p.Cap,
		Info:        p.Info,
		ActionType:  model.ActionInsert,
		SubmittedBy: actor.Username,
	}
	if err := q.queue.EnqueueSmallClaims(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// SubmitSmallClaimsUpdate stages a full replacement of an existing
// small-claims record
func (q *ChangeQueue) SubmitSmallClaimsUpdate(ctx context.Context, actor auth.Actor, claimID int, p SmallClaimsPayload) (*model.SmallClaimsApproval, error) {
	if !actor.Can(auth.ResourceSmallClaims, auth.ActionUpdate) {
		return nil, ErrPermissionDenied
	}

	claim, err := q.smallClaims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrNotFound
	}

	exists, err := q.smallClaims.ExistsForState(ctx, p.StateID, claimID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateKey
	}

	approval := &model.SmallClaimsApproval{
		ClaimID:     sql.NullInt64{Int64: int64(claimID), Valid: true},
		StateID:     p.StateID,
		Cap:         p.Cap,
		Info:        p.Info,
		ActionType:  model.ActionUpdate,
		SubmittedBy: actor.Username,
	}
	if err := q.queue.EnqueueSmallClaims(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// SubmitSmallClaimsDelete stages removal of an existing small-claims
// record. The state id is denormalized onto the queue row for display.
func (q *ChangeQueue) SubmitSmallClaimsDelete(ctx context.Context, actor auth.Actor, claimID int) (*model.SmallClaimsApproval, error) {
	if !actor.Can(auth.ResourceSmallClaims, auth.ActionDelete) {
		return nil, ErrPermissionDenied
	}

	claim, err := q.smallClaims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrNotFound
	}

	approval := &model.SmallClaimsApproval{
		ClaimID:     sql.NullInt64{Int64: int64(claimID), Valid: true},
		StateID:     claim.StateID,
		ActionType:  model.ActionDelete,
		SubmittedBy: actor.Username,
	}
	if err := q.queue.EnqueueSmallClaims(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// --- Statute submissions ---

// SubmitStatuteInsert stages a new statute record
func (q *ChangeQueue) SubmitStatuteInsert(ctx context.Context, actor auth.Actor, p StatutePayload) (*model.StatuteApproval, error) {
	if !actor.Can(auth.ResourceStatutes, auth.ActionCreate) {
		return nil, ErrPermissionDenied
	}
	if err := p.normalize(); err != nil {
		return nil, err
	}

	exists, err := q.statutes.ExistsForPair(ctx, p.StateID, p.IssueID, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateKey
	}

	approval := statuteApprovalFromPayload(p, model.ActionInsert, actor.Username)
	if err := q.queue.EnqueueStatute(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// SubmitStatuteUpdate stages a full replacement of an existing statute
func (q *ChangeQueue) SubmitStatuteUpdate(ctx context.Context, actor auth.Actor, statuteID int, p StatutePayload) (*model.StatuteApproval, error) {
	if !actor.Can(auth.ResourceStatutes, auth.ActionUpdate) {
		return nil, ErrPermissionDenied
	}
	if err := p.normalize(); err != nil {
		return nil, err
	}

	statute, err := q.statutes.GetByID(ctx, statuteID)
	if err != nil {
		return nil, err
	}
	if statute == nil {
		return nil, ErrNotFound
	}

	exists, err := q.statutes.ExistsForPair(ctx, p.StateID, p.IssueID, statuteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateKey
	}

	approval := statuteApprovalFromPayload(p, model.ActionUpdate, actor.Username)
	approval.StatuteID = sql.NullInt64{Int64: int64(statuteID), Valid: true}
	if err := q.queue.EnqueueStatute(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// SubmitStatuteDelete stages removal of an existing statute. State and
// issue ids are denormalized onto the queue row for display.
func (q *ChangeQueue) SubmitStatuteDelete(ctx context.Context, actor auth.Actor, statuteID int) (*model.StatuteApproval, error) {
	if !actor.Can(auth.ResourceStatutes, auth.ActionDelete) {
		return nil, ErrPermissionDenied
	}

	statute, err := q.statutes.GetByID(ctx, statuteID)
	if err != nil {
		return nil, err
	}
	if statute == nil {
		return nil, ErrNotFound
	}

	approval := &model.StatuteApproval{
		StatuteID:   sql.NullInt64{Int64: int64(statuteID), Valid: true},
		StateID:     statute.StateID,
		IssueID:     statute.IssueID,
		ActionType:  model.ActionDelete,
		SubmittedBy: actor.Username,
	}
	if err := q.queue.EnqueueStatute(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// --- Reviewer decisions ---

// ApproveSmallClaims applies one pending small-claims change
func (q *ChangeQueue) ApproveSmallClaims(ctx context.Context, actor auth.Actor, approvalID int) error {
	if !actor.Can(auth.ResourceApprovals, auth.ActionUpdate) {
		return ErrPermissionDenied
	}
	return mapNotPending(q.queue.ApproveSmallClaims(ctx, approvalID))
}

// RejectSmallClaims rejects one pending small-claims change
func (q *ChangeQueue) RejectSmallClaims(ctx context.Context, actor auth.Actor, approvalID int) error {
	if !actor.Can(auth.ResourceApprovals, auth.ActionUpdate) {
		return ErrPermissionDenied
	}
	return mapNotPending(q.queue.RejectSmallClaims(ctx, approvalID))
}

// ApproveStatute applies one pending statute change
func (q *ChangeQueue) ApproveStatute(ctx context.Context, actor auth.Actor, approvalID int) error {
	if !actor.Can(auth.ResourceApprovals, auth.ActionUpdate) {
		return ErrPermissionDenied
	}
	return mapNotPending(q.queue.ApproveStatute(ctx, approvalID))
}

// RejectStatute rejects one pending statute change
func (q *ChangeQueue) RejectStatute(ctx context.Context, actor auth.Actor, approvalID int) error {
	if !actor.Can(auth.ResourceApprovals, auth.ActionUpdate) {
		return ErrPermissionDenied
	}
	return mapNotPending(q.queue.RejectStatute(ctx, approvalID))
}

func mapNotPending(err error) error {
	if errors.Is(err, store.ErrNotPending) {
		return ErrInvalidState
	}
	return err
}

func statuteApprovalFromPayload(p StatutePayload, action model.ActionType, submittedBy string) *model.StatuteApproval {
	return &model.StatuteApproval{
		StateID:              p.StateID,
		IssueID:              p.IssueID,
		IssueInfo:            p.IssueInfo,
		TimeLimitType:        sql.NullString{String: string(p.TimeLimitType), Valid: true},
		TimeLimitMin:         sql.NullFloat64{Float64: p.TimeLimitMin, Valid: true},
		TimeLimitMax:         sql.NullFloat64{Float64: p.TimeLimitMax, Valid: true},
		Duration:             sql.NullString{String: string(p.Duration), Valid: true},
		Details:              p.Details,
		CodeReference:        p.CodeReference,
		OfficialSourceURL:    p.OfficialSourceURL,
		OtherSourceURL:       p.OtherSourceURL,
		ConditionsExceptions: p.ConditionsExceptions,
		Examples:             p.Examples,
		Tolling:              p.Tolling,
		ActionType:           action,
		SubmittedBy:          submittedBy,
	}
}
