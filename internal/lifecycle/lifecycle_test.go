package lifecycle_test

import (
	"testing"
	"time"

	"go-timeoff/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func approvedState(t *testing.T) lifecycle.State {
	t.Helper()
	st := lifecycle.NewState()
	_, err := lifecycle.Apply(&st, lifecycle.EventApprove, uuid.New(), "ok", time.Now().UTC())
	assert.NoError(t, err)
	return st
}

func TestApply_ApproveReject(t *testing.T) {
	actorID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("approve pending", func(t *testing.T) {
		st := lifecycle.NewState()
		action, err := lifecycle.Apply(&st, lifecycle.EventApprove, actorID, "looks fine", now)
		assert.NoError(t, err)
		assert.Equal(t, lifecycle.StatusApproved, st.Status)
		assert.Equal(t, lifecycle.CancelNone, st.CancelStatus)
		assert.Equal(t, actorID, *st.ApprovedBy)
		assert.Equal(t, now, *st.ApprovedAt)
		assert.Equal(t, "looks fine", *st.ApprovalComment)
		assert.Equal(t, lifecycle.EventApprove, action.Type)
	})

	t.Run("reject pending", func(t *testing.T) {
		st := lifecycle.NewState()
		action, err := lifecycle.Apply(&st, lifecycle.EventReject, actorID, "no coverage that week", now)
		assert.NoError(t, err)
		assert.Equal(t, lifecycle.StatusRejected, st.Status)
		assert.Equal(t, lifecycle.EventReject, action.Type)
	})

	t.Run("approve twice fails and leaves state untouched", func(t *testing.T) {
		st := approvedState(t)
		before := st
		_, err := lifecycle.Apply(&st, lifecycle.EventApprove, actorID, "", now)
		assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
		assert.Equal(t, before, st)
	})

	t.Run("reject after reject fails", func(t *testing.T) {
		st := lifecycle.NewState()
		_, err := lifecycle.Apply(&st, lifecycle.EventReject, actorID, "r", now)
		assert.NoError(t, err)
		_, err = lifecycle.Apply(&st, lifecycle.EventApprove, actorID, "", now)
		assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	})
}

func TestApply_CancelSubMachine(t *testing.T) {
	owner := uuid.New()
	responder := uuid.New()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("request cancel on approved", func(t *testing.T) {
		st := approvedState(t)
		action, err := lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "plans changed", now)
		assert.NoError(t, err)
		assert.Equal(t, lifecycle.StatusApproved, st.Status)
		assert.Equal(t, lifecycle.CancelPending, st.CancelStatus)
		assert.Equal(t, owner, *st.CancelRequestedBy)
		assert.Equal(t, "plans changed", *st.CancelReason)
		assert.Equal(t, lifecycle.EventRequestCancel, action.Type)
	})

	t.Run("request cancel while one is pending returns conflict", func(t *testing.T) {
		st := approvedState(t)
		_, err := lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "a", now)
		assert.NoError(t, err)
		_, err = lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "b", now)
		assert.ErrorIs(t, err, lifecycle.ErrCancelConflict)
		assert.Equal(t, "a", *st.CancelReason)
	})

	t.Run("request cancel on pending request fails", func(t *testing.T) {
		st := lifecycle.NewState()
		_, err := lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "", now)
		assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	})

	t.Run("approve cancel marks cancelled", func(t *testing.T) {
		st := approvedState(t)
		_, err := lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "sick anyway", now)
		assert.NoError(t, err)
		action, err := lifecycle.Apply(&st, lifecycle.EventApproveCancel, responder, "ok", now)
		assert.NoError(t, err)
		assert.Equal(t, lifecycle.CancelApproved, st.CancelStatus)
		assert.True(t, st.IsCancelled)
		assert.Equal(t, responder, *st.CancelRespondedBy)
		assert.Equal(t, lifecycle.StatusCancelled, st.EffectiveStatus())
		assert.Equal(t, lifecycle.EventApproveCancel, action.Type)
	})

	t.Run("reject cancel re-arms", func(t *testing.T) {
		st := approvedState(t)
		_, err := lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "", now)
		assert.NoError(t, err)
		_, err = lifecycle.Apply(&st, lifecycle.EventRejectCancel, responder, "needed on-site", now)
		assert.NoError(t, err)
		assert.Equal(t, lifecycle.CancelRejected, st.CancelStatus)
		assert.False(t, st.IsCancelled)

		// a new cancel request can be filed immediately
		_, err = lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "second try", now)
		assert.NoError(t, err)
		assert.Equal(t, lifecycle.CancelPending, st.CancelStatus)
		assert.Nil(t, st.CancelRespondedBy)
	})

	t.Run("cancelled is terminal for every event", func(t *testing.T) {
		st := approvedState(t)
		_, err := lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "", now)
		assert.NoError(t, err)
		_, err = lifecycle.Apply(&st, lifecycle.EventApproveCancel, responder, "", now)
		assert.NoError(t, err)

		for _, ev := range []lifecycle.Event{
			lifecycle.EventApprove,
			lifecycle.EventReject,
			lifecycle.EventRequestCancel,
			lifecycle.EventApproveCancel,
			lifecycle.EventRejectCancel,
		} {
			_, err := lifecycle.Apply(&st, ev, responder, "", now)
			assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition, string(ev))
		}
	})

	t.Run("approve cancel without pending cancel fails", func(t *testing.T) {
		st := approvedState(t)
		_, err := lifecycle.Apply(&st, lifecycle.EventApproveCancel, responder, "", now)
		assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	})
}

func TestApply_ReachableCombinationsOnly(t *testing.T) {
	owner := uuid.New()
	responder := uuid.New()
	now := time.Now().UTC()

	// walk every path of the machine and assert each intermediate state is a
	// legal combination
	paths := [][]lifecycle.Event{
		{lifecycle.EventReject},
		{lifecycle.EventApprove},
		{lifecycle.EventApprove, lifecycle.EventRequestCancel},
		{lifecycle.EventApprove, lifecycle.EventRequestCancel, lifecycle.EventApproveCancel},
		{lifecycle.EventApprove, lifecycle.EventRequestCancel, lifecycle.EventRejectCancel},
		{lifecycle.EventApprove, lifecycle.EventRequestCancel, lifecycle.EventRejectCancel, lifecycle.EventRequestCancel},
	}

	for _, path := range paths {
		st := lifecycle.NewState()
		assert.True(t, lifecycle.ValidCombination(st.Status, st.CancelStatus))
		for _, ev := range path {
			actor := owner
			if ev == lifecycle.EventApprove || ev == lifecycle.EventReject ||
				ev == lifecycle.EventApproveCancel || ev == lifecycle.EventRejectCancel {
				actor = responder
			}
			_, err := lifecycle.Apply(&st, ev, actor, "", now)
			assert.NoError(t, err)
			assert.True(t, lifecycle.ValidCombination(st.Status, st.CancelStatus),
				"after %s: %s/%s", ev, st.Status, st.CancelStatus)
		}
	}

	assert.False(t, lifecycle.ValidCombination(lifecycle.StatusPending, lifecycle.CancelPending))
	assert.False(t, lifecycle.ValidCombination(lifecycle.StatusRejected, lifecycle.CancelApproved))
}

func TestEditAndDeleteGates(t *testing.T) {
	owner := uuid.New()
	now := time.Now().UTC()

	st := lifecycle.NewState()
	assert.True(t, lifecycle.CanEdit(st))
	assert.True(t, lifecycle.CanDelete(st, false))

	st = approvedState(t)
	assert.False(t, lifecycle.CanEdit(st))
	assert.True(t, lifecycle.CanDelete(st, false))

	_, err := lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "", now)
	assert.NoError(t, err)
	assert.False(t, lifecycle.CanDelete(st, false))
	assert.True(t, lifecycle.CanDelete(st, true))

	_, err = lifecycle.Apply(&st, lifecycle.EventRejectCancel, owner, "", now)
	assert.NoError(t, err)
	assert.True(t, lifecycle.CanDelete(st, false))

	_, err = lifecycle.Apply(&st, lifecycle.EventRequestCancel, owner, "", now)
	assert.NoError(t, err)
	_, err = lifecycle.Apply(&st, lifecycle.EventApproveCancel, owner, "", now)
	assert.NoError(t, err)
	assert.False(t, lifecycle.CanDelete(st, false))
	assert.True(t, lifecycle.CanDelete(st, true))
}
