package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iliyamo/discipline-tracker/internal/model"
)

// CheckinRepo encapsulates database operations for daily check-ins.
// The (user_id, checkin_date) unique key enforces one check-in per
// user per calendar day; rows are immutable once inserted.
type CheckinRepo struct{ DB *sql.DB }

func NewCheckinRepo(db *sql.DB) *CheckinRepo { return &CheckinRepo{DB: db} }

// Create inserts a check-in and populates its ID.  A duplicate-day
// insert surfaces as ErrCheckinExists via MySQL error 1062.
func (r *CheckinRepo) Create(ctx context.Context, c *model.DailyCheckin) error {
	missionsJSON, err := json.Marshal(c.Missions)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO daily_checkins (user_id, checkin_date, energy, mood, missions_json, notes)
		 VALUES (?,?,?,?,?,?)`,
		c.UserID, c.CheckinDate.Format("2006-01-02"), c.Energy, c.Mood, missionsJSON, c.Notes)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrCheckinExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetForDate fetches a user's check-in for one calendar date.
// ErrNotFound when no check-in exists for that day.
func (r *CheckinRepo) GetForDate(ctx context.Context, userID uint64, date time.Time) (*model.DailyCheckin, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, checkin_date, energy, mood, missions_json, notes, created_at
		 FROM daily_checkins WHERE user_id=? AND checkin_date=? LIMIT 1`,
		userID, date.Format("2006-01-02"))
	return scanCheckin(row)
}

// List returns a user's check-ins newest first, paginated, together
// with the total row count.
func (r *CheckinRepo) List(ctx context.Context, userID uint64, page, pageSize int) ([]model.DailyCheckin, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM daily_checkins WHERE user_id=?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, checkin_date, energy, mood, missions_json, notes, created_at
		 FROM daily_checkins WHERE user_id=?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectCheckins(rows)
	return out, total, err
}

// ListRange returns a user's check-ins created inside [start, end] in
// chronological order, as consumed by the weekly review pipeline.
func (r *CheckinRepo) ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.DailyCheckin, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, checkin_date, energy, mood, missions_json, notes, created_at
		 FROM daily_checkins WHERE user_id=? AND created_at BETWEEN ? AND ?
		 ORDER BY created_at ASC`,
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheckins(rows)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCheckin(row rowScanner) (*model.DailyCheckin, error) {
	var c model.DailyCheckin
	var missionsJSON []byte
	err := row.Scan(&c.ID, &c.UserID, &c.CheckinDate, &c.Energy, &c.Mood, &missionsJSON, &c.Notes, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(missionsJSON, &c.Missions); err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCheckins(rows *sql.Rows) ([]model.DailyCheckin, error) {
	out := []model.DailyCheckin{}
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
