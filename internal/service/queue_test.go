package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/statutecheck/statutecheck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeApprovalQueue implements ApprovalQueue in memory with the same
// decided-once semantics as the real store: the first decision on a
// PENDING row wins and everything after sees store.ErrNotPending.
type fakeApprovalQueue struct {
	nextID      int
	smallClaims map[int]*model.SmallClaimsApproval
	statutes    map[int]*model.StatuteApproval
}

func newFakeApprovalQueue() *fakeApprovalQueue {
	return &fakeApprovalQueue{
		smallClaims: map[int]*model.SmallClaimsApproval{},
		statutes:    map[int]*model.StatuteApproval{},
	}
}

func (f *fakeApprovalQueue) EnqueueSmallClaims(_ context.Context, a *model.SmallClaimsApproval) error {
	f.nextID++
	a.ID = f.nextID
	a.Status = model.StatusPending
	f.smallClaims[a.ID] = a
	return nil
}

func (f *fakeApprovalQueue) ApproveSmallClaims(_ context.Context, id int) error {
	return decideSmallClaims(f.smallClaims, id, model.StatusApproved)
}

func (f *fakeApprovalQueue) RejectSmallClaims(_ context.Context, id int) error {
	return decideSmallClaims(f.smallClaims, id, model.StatusRejected)
}

func (f *fakeApprovalQueue) EnqueueStatute(_ context.Context, a *model.StatuteApproval) error {
	f.nextID++
	a.ID = f.nextID
	a.Status = model.StatusPending
	f.statutes[a.ID] = a
	return nil
}

func (f *fakeApprovalQueue) ApproveStatute(_ context.Context, id int) error {
	return decideStatute(f.statutes, id, model.StatusApproved)
}

func (f *fakeApprovalQueue) RejectStatute(_ context.Context, id int) error {
	return decideStatute(f.statutes, id, model.StatusRejected)
}

func decideSmallClaims(rows map[int]*model.SmallClaimsApproval, id int, to model.ApprovalStatus) error {
	a, ok := rows[id]
	if !ok || a.Status != model.StatusPending {
		return store.ErrNotPending
	}
	a.Status = to
	return nil
}

func decideStatute(rows map[int]*model.StatuteApproval, id int, to model.ApprovalStatus) error {
	a, ok := rows[id]
	if !ok || a.Status != model.StatusPending {
		return store.ErrNotPending
	}
	a.Status = to
	return nil
}

type fakeClaimsReader struct {
	claims map[int]*model.SmallClaim
}

func (f *fakeClaimsReader) GetByID(_ context.Context, id int) (*model.SmallClaim, error) {
	return f.claims[id], nil
}

func (f *fakeClaimsReader) ExistsForState(_ context.Context, stateID, excludeID int) (bool, error) {
	for _, c := range f.claims {
		if c.StateID == stateID && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeStatuteReader struct {
	statutes map[int]*model.Statute
}

func (f *fakeStatuteReader) GetByID(_ context.Context, id int) (*model.Statute, error) {
	return f.statutes[id], nil
}

func (f *fakeStatuteReader) ExistsForPair(_ context.Context, stateID, issueID, excludeID int) (bool, error) {
	for _, st := range f.statutes {
		if st.StateID == stateID && st.IssueID == issueID && st.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStatuteReader) FindByPair(_ context.Context, stateID, issueID int) (int, error) {
	for _, st := range f.statutes {
		if st.StateID == stateID && st.IssueID == issueID {
			return st.ID, nil
		}
	}
	return 0, nil
}

var (
	adminActor = auth.Actor{ID: 1, Username: "admin", Role: auth.AdminRole}

	editorActor = auth.Actor{
		ID: 2, Username: "editor", Role: "Editor",
		Permissions: auth.PermissionSet{
			auth.ResourceSmallClaims: {auth.ActionCreate: true, auth.ActionUpdate: true, auth.ActionDelete: true},
			auth.ResourceStatutes:    {auth.ActionCreate: true, auth.ActionUpdate: true, auth.ActionDelete: true},
		},
	}

	viewerActor = auth.Actor{ID: 3, Username: "viewer", Role: "Viewer"}
)

func testQueue(claims *fakeClaimsReader, statutes *fakeStatuteReader) (*ChangeQueue, *fakeApprovalQueue) {
	if claims == nil {
		claims = &fakeClaimsReader{claims: map[int]*model.SmallClaim{}}
	}
	if statutes == nil {
		statutes = &fakeStatuteReader{statutes: map[int]*model.Statute{}}
	}
	fake := newFakeApprovalQueue()
	return NewChangeQueue(fake, claims, statutes), fake
}

func rangePayload(stateID, issueID int) StatutePayload {
	return StatutePayload{
		StateID:       stateID,
		IssueID:       issueID,
		TimeLimitType: model.TimeLimitRange,
		TimeLimitMin:  2,
		TimeLimitMax:  4,
		Duration:      model.DurationYears,
	}
}

func TestSubmitSmallClaimsInsert(t *testing.T) {
	queue, fake := testQueue(nil, nil)

	approval, err := queue.SubmitSmallClaimsInsert(context.Background(), editorActor, SmallClaimsPayload{
		StateID: 5,
		Cap:     sql.NullFloat64{Float64: 10000, Valid: true},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ActionInsert, approval.ActionType)
	assert.Equal(t, model.StatusPending, approval.Status)
	assert.Equal(t, "editor", approval.SubmittedBy)
	assert.False(t, approval.ClaimID.Valid)
	assert.Len(t, fake.smallClaims, 1)
}

func TestSubmitSmallClaimsInsert_DuplicateState(t *testing.T) {
	claims := &fakeClaimsReader{claims: map[int]*model.SmallClaim{
		1: {ID: 1, StateID: 5},
	}}
	queue, fake := testQueue(claims, nil)

	_, err := queue.SubmitSmallClaimsInsert(context.Background(), editorActor, SmallClaimsPayload{StateID: 5})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Empty(t, fake.smallClaims)
}

func TestSubmitSmallClaimsInsert_PermissionDenied(t *testing.T) {
	queue, fake := testQueue(nil, nil)

	_, err := queue.SubmitSmallClaimsInsert(context.Background(), viewerActor, SmallClaimsPayload{StateID: 5})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, fake.smallClaims)
}

func TestSubmitSmallClaimsUpdate_NotFound(t *testing.T) {
	queue, _ := testQueue(nil, nil)

	_, err := queue.SubmitSmallClaimsUpdate(context.Background(), editorActor, 99, SmallClaimsPayload{StateID: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

// Re-submitting a claim's own state is not a duplicate; the uniqueness
// check excludes the record being updated.
func TestSubmitSmallClaimsUpdate_OwnStateAllowed(t *testing.T) {
	claims := &fakeClaimsReader{claims: map[int]*model.SmallClaim{
		1: {ID: 1, StateID: 5},
	}}
	queue, _ := testQueue(claims, nil)

	approval, err := queue.SubmitSmallClaimsUpdate(context.Background(), editorActor, 1, SmallClaimsPayload{StateID: 5})
	require.NoError(t, err)
	assert.Equal(t, model.ActionUpdate, approval.ActionType)
	assert.Equal(t, int64(1), approval.ClaimID.Int64)
}

func TestSubmitSmallClaimsUpdate_StateCollision(t *testing.T) {
	claims := &fakeClaimsReader{claims: map[int]*model.SmallClaim{
		1: {ID: 1, StateID: 5},
		2: {ID: 2, StateID: 6},
	}}
	queue, _ := testQueue(claims, nil)

	_, err := queue.SubmitSmallClaimsUpdate(context.Background(), editorActor, 1, SmallClaimsPayload{StateID: 6})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

// Delete queue rows carry the target's state so reviewers can see what
// the deletion affects even after the fact.
func TestSubmitSmallClaimsDelete_Denormalizes(t *testing.T) {
	claims := &fakeClaimsReader{claims: map[int]*model.SmallClaim{
		1: {ID: 1, StateID: 5},
	}}
	queue, _ := testQueue(claims, nil)

	approval, err := queue.SubmitSmallClaimsDelete(context.Background(), editorActor, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDelete, approval.ActionType)
	assert.Equal(t, 5, approval.StateID)
	assert.Equal(t, int64(1), approval.ClaimID.Int64)
}

func TestSubmitStatuteInsert(t *testing.T) {
	queue, fake := testQueue(nil, nil)

	approval, err := queue.SubmitStatuteInsert(context.Background(), editorActor, rangePayload(1, 10))
	require.NoError(t, err)

	assert.Equal(t, model.ActionInsert, approval.ActionType)
	assert.Equal(t, model.StatusPending, approval.Status)
	assert.Equal(t, "editor", approval.SubmittedBy)
	assert.Len(t, fake.statutes, 1)
}

func TestSubmitStatuteInsert_DuplicatePair(t *testing.T) {
	statutes := &fakeStatuteReader{statutes: map[int]*model.Statute{
		1: {ID: 1, StateID: 1, IssueID: 10},
	}}
	queue, _ := testQueue(nil, statutes)

	_, err := queue.SubmitStatuteInsert(context.Background(), editorActor, rangePayload(1, 10))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestSubmitStatuteInsert_InvalidPayload(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StatutePayload)
	}{
		{"bad limit type", func(p *StatutePayload) { p.TimeLimitType = "approximate" }},
		{"bad duration", func(p *StatutePayload) { p.Duration = "weeks" }},
		{"range min equals max", func(p *StatutePayload) { p.TimeLimitMin, p.TimeLimitMax = 3, 3 }},
		{"range min above max", func(p *StatutePayload) { p.TimeLimitMin, p.TimeLimitMax = 5, 3 }},
		{"exact with distinct max", func(p *StatutePayload) {
			p.TimeLimitType = model.TimeLimitExact
			p.TimeLimitMin, p.TimeLimitMax = 3, 5
		}},
		{"exact with no limit value", func(p *StatutePayload) {
			p.TimeLimitType = model.TimeLimitExact
			p.TimeLimitMin, p.TimeLimitMax = 0, 0
		}},
		{"exact with negative limit", func(p *StatutePayload) {
			p.TimeLimitType = model.TimeLimitExact
			p.TimeLimitMin, p.TimeLimitMax = -1, 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue, fake := testQueue(nil, nil)
			p := rangePayload(1, 10)
			tt.mutate(&p)

			_, err := queue.SubmitStatuteInsert(context.Background(), editorActor, p)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.Empty(t, fake.statutes)
		})
	}
}

func TestSubmitStatuteInsert_ExactNormalized(t *testing.T) {
	queue, _ := testQueue(nil, nil)

	p := rangePayload(1, 10)
	p.TimeLimitType = model.TimeLimitExact
	p.TimeLimitMin, p.TimeLimitMax = 3, 0

	approval, err := queue.SubmitStatuteInsert(context.Background(), editorActor, p)
	require.NoError(t, err)
	assert.Equal(t, 3.0, approval.TimeLimitMin.Float64)
	assert.Equal(t, 3.0, approval.TimeLimitMax.Float64)
}

func TestSubmitStatuteDelete_Denormalizes(t *testing.T) {
	statutes := &fakeStatuteReader{statutes: map[int]*model.Statute{
		7: {ID: 7, StateID: 1, IssueID: 10},
	}}
	queue, _ := testQueue(nil, statutes)

	approval, err := queue.SubmitStatuteDelete(context.Background(), editorActor, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDelete, approval.ActionType)
	assert.Equal(t, 1, approval.StateID)
	assert.Equal(t, 10, approval.IssueID)
	assert.Equal(t, int64(7), approval.StatuteID.Int64)
}

func TestApproveSmallClaims_DecidedOnce(t *testing.T) {
	queue, _ := testQueue(nil, nil)
	ctx := context.Background()

	approval, err := queue.SubmitSmallClaimsInsert(ctx, editorActor, SmallClaimsPayload{StateID: 5})
	require.NoError(t, err)

	require.NoError(t, queue.ApproveSmallClaims(ctx, adminActor, approval.ID))

	// Every later decision on the same row fails
	assert.ErrorIs(t, queue.ApproveSmallClaims(ctx, adminActor, approval.ID), ErrInvalidState)
	assert.ErrorIs(t, queue.RejectSmallClaims(ctx, adminActor, approval.ID), ErrInvalidState)
}

func TestRejectStatute_ThenApproveFails(t *testing.T) {
	queue, _ := testQueue(nil, nil)
	ctx := context.Background()

	approval, err := queue.SubmitStatuteInsert(ctx, editorActor, rangePayload(1, 10))
	require.NoError(t, err)

	require.NoError(t, queue.RejectStatute(ctx, adminActor, approval.ID))
	assert.ErrorIs(t, queue.ApproveStatute(ctx, adminActor, approval.ID), ErrInvalidState)
}

func TestApprove_UnknownID(t *testing.T) {
	queue, _ := testQueue(nil, nil)
	assert.ErrorIs(t, queue.ApproveSmallClaims(context.Background(), adminActor, 404), ErrInvalidState)
	assert.ErrorIs(t, queue.ApproveStatute(context.Background(), adminActor, 404), ErrInvalidState)
}

// Editors can stage changes but deciding them needs the approvals
// permission, which editorActor does not hold.
func TestDecide_PermissionDenied(t *testing.T) {
	queue, _ := testQueue(nil, nil)
	ctx := context.Background()

	approval, err := queue.SubmitStatuteInsert(ctx, editorActor, rangePayload(1, 10))
	require.NoError(t, err)

	assert.ErrorIs(t, queue.ApproveStatute(ctx, editorActor, approval.ID), ErrPermissionDenied)
	assert.ErrorIs(t, queue.RejectStatute(ctx, editorActor, approval.ID), ErrPermissionDenied)
	assert.ErrorIs(t, queue.ApproveSmallClaims(ctx, viewerActor, 1), ErrPermissionDenied)
}
