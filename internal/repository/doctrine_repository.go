package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/discipline-tracker/internal/model"
)

// DoctrineRepo encapsulates database operations for doctrines.  The
// four list columns are JSON documents; marshalling happens only at
// this boundary so the rest of the code works with typed slices.
type DoctrineRepo struct{ DB *sql.DB }

func NewDoctrineRepo(db *sql.DB) *DoctrineRepo { return &DoctrineRepo{DB: db} }

// Upsert creates or replaces the single doctrine row for a user and
// returns the stored record.  The unique key on user_id makes the
// INSERT ... ON DUPLICATE KEY UPDATE an idempotent replace.
func (r *DoctrineRepo) Upsert(ctx context.Context, userID uint64, goals []model.Goal, rules []string, habits []model.Habit, targets []model.WeeklyTarget) (*model.Doctrine, error) {
	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return nil, err
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return nil, err
	}
	habitsJSON, err := json.Marshal(habits)
	if err != nil {
		return nil, err
	}
	targetsJSON, err := json.Marshal(targets)
	if err != nil {
		return nil, err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO doctrines (user_id, goals_json, rules_json, habits_json, weekly_targets_json)
		 VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		   goals_json=VALUES(goals_json),
		   rules_json=VALUES(rules_json),
		   habits_json=VALUES(habits_json),
		   weekly_targets_json=VALUES(weekly_targets_json)`,
		userID, goalsJSON, rulesJSON, habitsJSON, targetsJSON)
	if err != nil {
		return nil, err
	}
	return r.GetByUser(ctx, userID)
}

// GetByUser fetches a user's doctrine.  ErrNotFound when none exists.
func (r *DoctrineRepo) GetByUser(ctx context.Context, userID uint64) (*model.Doctrine, error) {
	var d model.Doctrine
	var goalsJSON, rulesJSON, habitsJSON, targetsJSON []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, goals_json, rules_json, habits_json, weekly_targets_json, created_at, updated_at
		 FROM doctrines WHERE user_id=? LIMIT 1`, userID).
		Scan(&d.ID, &d.UserID, &goalsJSON, &rulesJSON, &habitsJSON, &targetsJSON, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(goalsJSON, &d.Goals); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rulesJSON, &d.Rules); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(habitsJSON, &d.Habits); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(targetsJSON, &d.WeeklyTargets); err != nil {
		return nil, err
	}
	return &d, nil
}
