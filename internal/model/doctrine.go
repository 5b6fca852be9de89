package model

import "time"

// Goal is one prioritized entry in a doctrine's goal list.  Ranks are
// unique within a doctrine and lower means more important.
type Goal struct {
	Rank int    `json:"rank"`
	Goal string `json:"goal"`
}

// Habit pairs a habit with the trigger that should start it.
type Habit struct {
	Habit   string `json:"habit"`
	Trigger string `json:"trigger"`
}

// WeeklyTarget tracks a measurable target for the week.  Current and
// Goal share the unit named by Metric.
type WeeklyTarget struct {
	Target  string  `json:"target"`
	Metric  string  `json:"metric"`
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
}

// Doctrine is a user's persisted rule set.  There is at most one per
// user; the four lists are stored as JSON documents and are never
// empty once a doctrine exists.  Every AI evaluation is grounded on
// this record.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner of the doctrine (unique).
//  Goals         – doctrines.goals_json, ranked goals.
//  Rules         – doctrines.rules_json, plain rule strings.
//  Habits        – doctrines.habits_json, habit/trigger pairs.
//  WeeklyTargets – doctrines.weekly_targets_json.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last upsert.
type Doctrine struct {
	ID            uint64         `json:"id"`
	UserID        uint64         `json:"user_id"`
	Goals         []Goal         `json:"goals"`
	Rules         []string       `json:"rules"`
	Habits        []Habit        `json:"habits"`
	WeeklyTargets []WeeklyTarget `json:"weekly_targets"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
