package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/streak"
)

// DisciplineLogRepo encapsulates database operations for discipline
// logs.  Logs are append-only; there is no update or delete.
type DisciplineLogRepo struct{ DB *sql.DB }

func NewDisciplineLogRepo(db *sql.DB) *DisciplineLogRepo { return &DisciplineLogRepo{DB: db} }

// Create appends a log event and populates its ID.
func (r *DisciplineLogRepo) Create(ctx context.Context, l *model.DisciplineLog) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO discipline_logs (user_id, decision_id, log_type, reason) VALUES (?,?,?,?)",
		l.UserID, l.DecisionID, l.LogType, l.Reason)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// List returns a user's log events newest first, paginated, with the
// total row count.
func (r *DisciplineLogRepo) List(ctx context.Context, userID uint64, page, pageSize int) ([]model.DisciplineLog, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM discipline_logs WHERE user_id=?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, decision_id, log_type, reason, created_at
		 FROM discipline_logs WHERE user_id=?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectLogs(rows)
	return out, total, err
}

// ListRange returns a user's log events created inside [start, end]
// in chronological order.
func (r *DisciplineLogRepo) ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.DisciplineLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, decision_id, log_type, reason, created_at
		 FROM discipline_logs WHERE user_id=? AND created_at BETWEEN ? AND ?
		 ORDER BY created_at ASC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

// DailySummaries groups a user's full log history by calendar day in
// ascending date order, flagging each day that contains at least one
// violation.  This feeds streak.Compute directly.
func (r *DisciplineLogRepo) DailySummaries(ctx context.Context, userID uint64) ([]streak.Day, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE(created_at) AS log_date,
		        MAX(CASE WHEN log_type = 'violation' THEN 1 ELSE 0 END) AS has_violation
		 FROM discipline_logs WHERE user_id=?
		 GROUP BY log_date ORDER BY log_date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []streak.Day{}
	for rows.Next() {
		var d streak.Day
		var violation int
		if err := rows.Scan(&d.Date, &violation); err != nil {
			return nil, err
		}
		d.HasViolation = violation == 1
		days = append(days, d)
	}
	return days, rows.Err()
}

func collectLogs(rows *sql.Rows) ([]model.DisciplineLog, error) {
	out := []model.DisciplineLog{}
	for rows.Next() {
		var l model.DisciplineLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.DecisionID, &l.LogType, &l.Reason, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
