package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

type CancelStatus string

const (
	CancelNone     CancelStatus = "NONE"
	CancelPending  CancelStatus = "CANCEL_PENDING"
	CancelApproved CancelStatus = "CANCEL_APPROVED"
	CancelRejected CancelStatus = "CANCEL_REJECTED"
)

type Event string

const (
	EventApprove       Event = "APPROVE"
	EventReject        Event = "REJECT"
	EventEdit          Event = "EDIT"
	EventDelete        Event = "DELETE"
	EventRequestCancel Event = "REQUEST_CANCEL"
	EventApproveCancel Event = "APPROVE_CANCEL"
	EventRejectCancel  Event = "REJECT_CANCEL"
)

var (
	ErrInvalidTransition = errors.New("invalid transition for current state")
	ErrCancelConflict    = errors.New("cancel request already pending")
	ErrAlreadyCancelled  = errors.New("request already cancelled")
)

// State holds the denormalized lifecycle fields embedded into every request
// entity. The transaction log is the audit history; these fields are the
// write-time cache Apply keeps consistent with the latest log entry.
type State struct {
	Status       Status       `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CancelStatus CancelStatus `gorm:"type:varchar(20);not null;default:'NONE'"`
	IsCancelled  bool         `gorm:"not null;default:false"`

	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	ApprovalComment *string `gorm:"type:text"`

	CancelRequestedBy *uuid.UUID `gorm:"type:uuid"`
	CancelRequestedAt *time.Time
	CancelReason      *string `gorm:"type:text"`

	CancelRespondedBy     *uuid.UUID `gorm:"type:uuid"`
	CancelRespondedAt     *time.Time
	CancelResponseComment *string `gorm:"type:text"`
}

// Action describes the transaction-log entry a successful transition emits.
// Exactly one Action per applied status-changing event.
type Action struct {
	Type       Event
	ActorID    uuid.UUID
	Comment    string
	OccurredAt time.Time
}

func NewState() State {
	return State{Status: StatusPending, CancelStatus: CancelNone}
}

// EffectiveStatus folds an approved cancellation into the status shown to
// consumers. The stored status stays APPROVED so the cancel sub-machine keeps
// its full history in one place.
func (s State) EffectiveStatus() Status {
	if s.IsCancelled {
		return StatusCancelled
	}
	return s.Status
}

// ValidCombination reports whether a status / cancel-status pair is one of
// the reachable combinations. A cancel sub-status other than NONE only ever
// coexists with APPROVED.
func ValidCombination(status Status, cancel CancelStatus) bool {
	switch cancel {
	case CancelNone:
		return status == StatusPending || status == StatusApproved || status == StatusRejected
	case CancelPending, CancelApproved, CancelRejected:
		return status == StatusApproved
	default:
		return false
	}
}

// CanEdit reports whether non-status fields may still be changed.
func CanEdit(s State) bool {
	return !s.IsCancelled && s.Status == StatusPending
}

// CanDelete reports whether the request may be removed. Admins may delete in
// any state; owners only while pending or while approved with no cancellation
// in flight.
func CanDelete(s State, admin bool) bool {
	if admin {
		return true
	}
	if s.IsCancelled {
		return false
	}
	switch s.Status {
	case StatusPending:
		return true
	case StatusApproved:
		return s.CancelStatus == CancelNone || s.CancelStatus == CancelRejected
	default:
		return false
	}
}

// Apply validates ev against the current state, mutates the state in place
// and returns the audit Action to append. The state is untouched on error.
// Apply does not decide authorization; it re-validates preconditions
// regardless of who the actor is.
func Apply(s *State, ev Event, actorID uuid.UUID, comment string, now time.Time) (Action, error) {
	if s.IsCancelled {
		return Action{}, fmt.Errorf("%w: %s", ErrInvalidTransition, ErrAlreadyCancelled)
	}

	switch ev {
	case EventApprove:
		if s.Status != StatusPending {
			return Action{}, transitionErr(ev, s)
		}
		s.Status = StatusApproved
		s.ApprovedBy = &actorID
		s.ApprovedAt = &now
		s.ApprovalComment = optional(comment)

	case EventReject:
		if s.Status != StatusPending {
			return Action{}, transitionErr(ev, s)
		}
		s.Status = StatusRejected
		s.ApprovedBy = &actorID
		s.ApprovedAt = &now
		s.ApprovalComment = optional(comment)

	case EventRequestCancel:
		if s.Status != StatusApproved {
			return Action{}, transitionErr(ev, s)
		}
		if s.CancelStatus == CancelPending {
			return Action{}, ErrCancelConflict
		}
		if s.CancelStatus != CancelNone && s.CancelStatus != CancelRejected {
			return Action{}, transitionErr(ev, s)
		}
		s.CancelStatus = CancelPending
		s.CancelRequestedBy = &actorID
		s.CancelRequestedAt = &now
		s.CancelReason = optional(comment)
		s.CancelRespondedBy = nil
		s.CancelRespondedAt = nil
		s.CancelResponseComment = nil

	case EventApproveCancel:
		if s.CancelStatus != CancelPending {
			return Action{}, transitionErr(ev, s)
		}
		s.CancelStatus = CancelApproved
		s.IsCancelled = true
		s.CancelRespondedBy = &actorID
		s.CancelRespondedAt = &now
		s.CancelResponseComment = optional(comment)

	case EventRejectCancel:
		if s.CancelStatus != CancelPending {
			return Action{}, transitionErr(ev, s)
		}
		s.CancelStatus = CancelRejected
		s.CancelRespondedBy = &actorID
		s.CancelRespondedAt = &now
		s.CancelResponseComment = optional(comment)

	default:
		return Action{}, fmt.Errorf("%w: event %s does not change status", ErrInvalidTransition, ev)
	}

	return Action{Type: ev, ActorID: actorID, Comment: comment, OccurredAt: now}, nil
}

func transitionErr(ev Event, s *State) error {
	return fmt.Errorf("%w: %s not allowed from %s/%s", ErrInvalidTransition, ev, s.Status, s.CancelStatus)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
