package txlog_test

import (
	"testing"
	"time"

	"go-timeoff/internal/lifecycle"
	"go-timeoff/internal/txlog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func entry(ev lifecycle.Event, at time.Time) txlog.Entry {
	return txlog.NewEntry(uuid.New(), txlog.KindLeave, lifecycle.Action{
		Type:       ev,
		ActorID:    uuid.New(),
		OccurredAt: at,
	})
}

func TestNewEntry(t *testing.T) {
	requestID := uuid.New()
	actorID := uuid.New()
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	e := txlog.NewEntry(requestID, txlog.KindOvertime, lifecycle.Action{
		Type:       lifecycle.EventApprove,
		ActorID:    actorID,
		Comment:    "fine by me",
		OccurredAt: at,
	})

	assert.Equal(t, requestID, e.RequestID)
	assert.Equal(t, txlog.KindOvertime, e.RequestKind)
	assert.Equal(t, lifecycle.EventApprove, e.Type)
	assert.Equal(t, actorID, e.ActorID)
	assert.Equal(t, "fine by me", *e.Comment)
	assert.Equal(t, txlog.ResultCompleted, e.Result)
	assert.Equal(t, at, e.CreatedAt)

	noComment := txlog.NewEntry(requestID, txlog.KindLeave, lifecycle.Action{Type: lifecycle.EventReject, ActorID: actorID, OccurredAt: at})
	assert.Nil(t, noComment.Comment)
}

func TestLatestCancelAction(t *testing.T) {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	t.Run("none without cancel entries", func(t *testing.T) {
		entries := []txlog.Entry{entry(lifecycle.EventApprove, base)}
		assert.Nil(t, txlog.LatestCancelAction(entries))
		assert.Equal(t, lifecycle.CancelNone, txlog.CancelStatusFromHistory(entries))
	})

	t.Run("latest cancel entry wins", func(t *testing.T) {
		entries := []txlog.Entry{
			entry(lifecycle.EventApprove, base),
			entry(lifecycle.EventRequestCancel, base.Add(time.Hour)),
			entry(lifecycle.EventRejectCancel, base.Add(2*time.Hour)),
			entry(lifecycle.EventRequestCancel, base.Add(3*time.Hour)),
		}
		latest := txlog.LatestCancelAction(entries)
		assert.NotNil(t, latest)
		assert.Equal(t, lifecycle.EventRequestCancel, latest.Type)
		assert.Equal(t, base.Add(3*time.Hour), latest.CreatedAt)
		assert.Equal(t, lifecycle.CancelPending, txlog.CancelStatusFromHistory(entries))
	})

	t.Run("approved cancellation derives cancel approved", func(t *testing.T) {
		entries := []txlog.Entry{
			entry(lifecycle.EventApprove, base),
			entry(lifecycle.EventRequestCancel, base.Add(time.Hour)),
			entry(lifecycle.EventApproveCancel, base.Add(2*time.Hour)),
		}
		assert.Equal(t, lifecycle.CancelApproved, txlog.CancelStatusFromHistory(entries))
	})
}
