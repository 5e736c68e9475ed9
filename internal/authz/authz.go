package authz

import (
	"github.com/google/uuid"

	"go-timeoff/internal/lifecycle"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleEmployee   Role = "EMPLOYEE"
)

func ParseRole(v string) (Role, bool) {
	switch Role(v) {
	case RoleAdmin, RoleSupervisor, RoleEmployee:
		return Role(v), true
	}
	return "", false
}

// Actor is the identity attempting a transition, resolved by the caller from
// the auth context.
type Actor struct {
	ID             uuid.UUID
	Role           Role
	TeamID         *string
	DepartmentName *string
}

// Subject is the slice of a request the evaluator needs: who owns it and the
// owner's organizational scope.
type Subject struct {
	RequesterID    uuid.UUID
	TeamID         *string
	DepartmentName *string
}

// Policy controls the scope-matching fallback when organizational data is
// incomplete. MissingScopeMatches=true treats absent team/department data on
// either side as a match; false denies by default.
type Policy struct {
	MissingScopeMatches bool
}

func DefaultPolicy() Policy {
	return Policy{MissingScopeMatches: true}
}

type Evaluator struct {
	policy Policy
}

func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: policy}
}

// CanPerform settles identity, role and scope: may this actor attempt this
// event at all. Whether the event is valid for the request's current state is
// the state machine's call, so a caller who loses a race is told the
// transition is invalid rather than that they lack permission. Nobody other
// than an admin decides their own request.
func (e *Evaluator) CanPerform(actor Actor, sub Subject, ev lifecycle.Event) bool {
	switch actor.Role {
	case RoleAdmin:
		if decisionEvent(ev) || ev == lifecycle.EventDelete {
			return true
		}
		return ownerAllowed(actor, sub, ev)
	case RoleSupervisor:
		if decisionEvent(ev) {
			return actor.ID != sub.RequesterID && e.scopeMatch(actor, sub)
		}
		return ownerAllowed(actor, sub, ev)
	case RoleEmployee:
		if decisionEvent(ev) {
			return false
		}
		return ownerAllowed(actor, sub, ev)
	default:
		return false
	}
}

func decisionEvent(ev lifecycle.Event) bool {
	switch ev {
	case lifecycle.EventApprove, lifecycle.EventReject,
		lifecycle.EventApproveCancel, lifecycle.EventRejectCancel:
		return true
	}
	return false
}

// ownerAllowed grants the requester their own lifecycle verbs. State gates,
// pending-only edits and the deletable-state rules, are enforced by the
// services against the state machine's predicates.
func ownerAllowed(actor Actor, sub Subject, ev lifecycle.Event) bool {
	if actor.ID != sub.RequesterID {
		return false
	}
	switch ev {
	case lifecycle.EventEdit, lifecycle.EventDelete, lifecycle.EventRequestCancel:
		return true
	default:
		return false
	}
}

// scopeMatch compares team ids when both sides have one, falls back to
// department names, and applies the missing-data policy otherwise.
func (e *Evaluator) scopeMatch(actor Actor, sub Subject) bool {
	if actor.TeamID != nil && sub.TeamID != nil {
		return *actor.TeamID == *sub.TeamID
	}
	if actor.DepartmentName != nil && sub.DepartmentName != nil {
		return *actor.DepartmentName == *sub.DepartmentName
	}
	return e.policy.MissingScopeMatches
}
