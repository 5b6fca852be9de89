package model

import "time"

// Discipline log event types.  Override and violation events must
// carry a reason; complied and skipped may omit it.
const (
	LogTypeComplied  = "complied"
	LogTypeOverride  = "override"
	LogTypeViolation = "violation"
	LogTypeSkipped   = "skipped"
)

// LogTypes lists the accepted log_type values.
var LogTypes = []string{LogTypeComplied, LogTypeOverride, LogTypeViolation, LogTypeSkipped}

// ValidLogType reports whether t is one of the fixed log types.
func ValidLogType(t string) bool {
	for _, v := range LogTypes {
		if v == t {
			return true
		}
	}
	return false
}

// DisciplineLog is an append-only event recording whether the user
// followed a decision's guidance.  It is never updated or deleted and
// serves only as analytical input (streaks, weekly reviews).
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the log entry.
//  DecisionID – decision the event refers to (nullable).
//  LogType    – one of LogTypes.
//  Reason     – explanation, required for override/violation (nullable).
//  CreatedAt  – timestamp of the event.
type DisciplineLog struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	DecisionID *uint64   `json:"decision_id"`
	LogType    string    `json:"log_type"`
	Reason     *string   `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
