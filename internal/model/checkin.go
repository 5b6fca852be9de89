package model

import "time"

// DailyCheckin is a once-per-day snapshot of a user's state.  The
// (user_id, checkin_date) pair is unique at the storage level; a
// check-in is immutable once created.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the check-in.
//  CheckinDate – calendar date of the check-in (UTC, date only).
//  Energy      – self-reported energy, 1..10.
//  Mood        – self-reported mood, 1..10.
//  Missions    – daily_checkins.missions_json, 1 to 3 mission strings.
//  Notes       – optional free-form notes (nullable).
//  CreatedAt   – timestamp of creation.
type DailyCheckin struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	CheckinDate time.Time `json:"checkin_date"`
	Energy      int       `json:"energy"`
	Mood        int       `json:"mood"`
	Missions    []string  `json:"missions"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
