package events

import "time"

const RequestTransitionedTopic = "hr.request.lifecycle.v1"

// RequestTransitionedEvent is published (via the outbox) after every
// committed status-changing transition. Notification and reporting consumers
// hang off this topic; the core never calls them directly.
type RequestTransitionedEvent struct {
	EventType    string    `json:"event_type"`
	RequestKind  string    `json:"request_kind"`
	RequestID    string    `json:"request_id"`
	RequesterID  string    `json:"requester_id"`
	ActorID      string    `json:"actor_id"`
	Status       string    `json:"status"`
	CancelStatus string    `json:"cancel_status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
