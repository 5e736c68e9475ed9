package txlog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-timeoff/internal/lifecycle"
)

type RequestKind string

const (
	KindLeave    RequestKind = "LEAVE"
	KindOvertime RequestKind = "OVERTIME"
)

const ResultCompleted = "COMPLETED"

// Entry is one append-only audit record. Entries are never updated while
// their request exists; removing a request soft-deletes its entries in the
// same transaction, so the trail stays recoverable alongside the row.
type Entry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_tx_entries_request"`
	RequestKind RequestKind     `gorm:"type:varchar(20);not null;index:idx_tx_entries_request"`
	Type        lifecycle.Event `gorm:"type:varchar(20);not null"`
	ActorID     uuid.UUID       `gorm:"type:uuid;not null"`
	Comment     *string         `gorm:"type:text"`
	Result      string          `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_tx_entries_request"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

func (Entry) TableName() string { return "transaction_log_entries" }

// NewEntry materializes a lifecycle action into a log entry.
func NewEntry(requestID uuid.UUID, kind RequestKind, action lifecycle.Action) Entry {
	e := Entry{
		ID:          uuid.New(),
		RequestID:   requestID,
		RequestKind: kind,
		Type:        action.Type,
		ActorID:     action.ActorID,
		Result:      ResultCompleted,
		CreatedAt:   action.OccurredAt,
	}
	if action.Comment != "" {
		c := action.Comment
		e.Comment = &c
	}
	return e
}

// LatestCancelAction returns the most recent cancel-related entry, or nil.
// entries must be ordered oldest first, the order ListByRequest returns.
// Used to audit that the denormalized cancel status matches history.
func LatestCancelAction(entries []Entry) *Entry {
	for i := len(entries) - 1; i >= 0; i-- {
		switch entries[i].Type {
		case lifecycle.EventRequestCancel, lifecycle.EventApproveCancel, lifecycle.EventRejectCancel:
			return &entries[i]
		}
	}
	return nil
}

// CancelStatusFromHistory re-derives the cancel sub-status from the log.
func CancelStatusFromHistory(entries []Entry) lifecycle.CancelStatus {
	latest := LatestCancelAction(entries)
	if latest == nil {
		return lifecycle.CancelNone
	}
	switch latest.Type {
	case lifecycle.EventRequestCancel:
		return lifecycle.CancelPending
	case lifecycle.EventApproveCancel:
		return lifecycle.CancelApproved
	default:
		return lifecycle.CancelRejected
	}
}
