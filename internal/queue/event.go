// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published on the discipline.events queue.
const (
	EventCheckinCreated    = "checkin.created"
	EventDecisionEvaluated = "decision.evaluated"
	EventReviewGenerated   = "review.generated"
	EventLogRecorded       = "log.recorded"
)

// DisciplineEvent is published after a tracked write completes.  It
// carries enough information for downstream consumers to log, notify,
// or feed analytics without querying the primary database.
type DisciplineEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	EntityID   uint64 `json:"entity_id"`
	Detail     string `json:"detail"`
	OccurredAt string `json:"occurred_at"`
}
