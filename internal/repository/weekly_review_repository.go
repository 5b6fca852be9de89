package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/discipline-tracker/internal/model"
)

// WeeklyReviewRepo encapsulates database operations for weekly
// reviews.  The (user_id, week_start) unique key guarantees one row
// per user per week; Upsert makes regeneration overwrite in place.
type WeeklyReviewRepo struct{ DB *sql.DB }

func NewWeeklyReviewRepo(db *sql.DB) *WeeklyReviewRepo { return &WeeklyReviewRepo{DB: db} }

// Upsert inserts the review or, when a row for (user, week_start)
// already exists, replaces its week_end and payload.  It returns the
// stored record.
func (r *WeeklyReviewRepo) Upsert(ctx context.Context, rv *model.WeeklyReview) (*model.WeeklyReview, error) {
	reviewJSON, err := json.Marshal(rv.Review)
	if err != nil {
		return nil, err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO weekly_reviews (user_id, week_start, week_end, ai_review_json)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		   week_end=VALUES(week_end),
		   ai_review_json=VALUES(ai_review_json)`,
		rv.UserID, rv.WeekStart.Format("2006-01-02"), rv.WeekEnd.Format("2006-01-02"), reviewJSON)
	if err != nil {
		return nil, err
	}

	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, week_end, ai_review_json, created_at, updated_at
		 FROM weekly_reviews WHERE user_id=? AND week_start=? LIMIT 1`,
		rv.UserID, rv.WeekStart.Format("2006-01-02"))
	return scanReview(row)
}

// GetByID fetches a review by id.  ErrNotFound when missing.
func (r *WeeklyReviewRepo) GetByID(ctx context.Context, id uint64) (*model.WeeklyReview, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, week_end, ai_review_json, created_at, updated_at
		 FROM weekly_reviews WHERE id=? LIMIT 1`, id)
	return scanReview(row)
}

// List returns a user's reviews ordered by week_start descending,
// paginated, with the total row count.
func (r *WeeklyReviewRepo) List(ctx context.Context, userID uint64, page, pageSize int) ([]model.WeeklyReview, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM weekly_reviews WHERE user_id=?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, week_start, week_end, ai_review_json, created_at, updated_at
		 FROM weekly_reviews WHERE user_id=?
		 ORDER BY week_start DESC LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.WeeklyReview{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rv)
	}
	return out, total, rows.Err()
}

func scanReview(row rowScanner) (*model.WeeklyReview, error) {
	var rv model.WeeklyReview
	var reviewJSON []byte
	err := row.Scan(&rv.ID, &rv.UserID, &rv.WeekStart, &rv.WeekEnd, &reviewJSON, &rv.CreatedAt, &rv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reviewJSON, &rv.Review); err != nil {
		return nil, err
	}
	return &rv, nil
}
