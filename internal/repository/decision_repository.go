package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iliyamo/discipline-tracker/internal/model"
)

// DecisionRepo encapsulates database operations for decisions.
// context_json and ai_response_json are JSON document columns.
type DecisionRepo struct{ DB *sql.DB }

func NewDecisionRepo(db *sql.DB) *DecisionRepo { return &DecisionRepo{DB: db} }

// Create inserts a decision row and populates its ID.  The caller
// only invokes this after the AI verdict validated, so AIResponse and
// RawAIResponse are set on the happy path and nil otherwise.
func (r *DecisionRepo) Create(ctx context.Context, d *model.Decision) error {
	contextJSON, err := json.Marshal(d.Context)
	if err != nil {
		return err
	}
	var aiJSON []byte
	if d.AIResponse != nil {
		if aiJSON, err = json.Marshal(d.AIResponse); err != nil {
			return err
		}
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO decisions (user_id, category, context_json, ai_response_json, raw_ai_response, final_choice, outcome_notes)
		 VALUES (?,?,?,?,?,?,?)`,
		d.UserID, d.Category, contextJSON, aiJSON, d.RawAIResponse, d.FinalChoice, d.OutcomeNotes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches a decision by id.  ErrNotFound when missing.
func (r *DecisionRepo) GetByID(ctx context.Context, id uint64) (*model.Decision, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, category, context_json, ai_response_json, raw_ai_response, final_choice, outcome_notes, created_at, updated_at
		 FROM decisions WHERE id=? LIMIT 1`, id)
	return scanDecision(row)
}

// List returns a user's decisions newest first, optionally filtered
// by category, paginated, with the total row count.
func (r *DecisionRepo) List(ctx context.Context, userID uint64, category string, page, pageSize int) ([]model.Decision, int, error) {
	where := "WHERE user_id=?"
	args := []any{userID}
	if category != "" {
		where += " AND category=?"
		args = append(args, category)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM decisions "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, category, context_json, ai_response_json, raw_ai_response, final_choice, outcome_notes, created_at, updated_at
		 FROM decisions `+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectDecisions(rows)
	return out, total, err
}

// ListRange returns a user's decisions created inside [start, end] in
// chronological order.
func (r *DecisionRepo) ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.Decision, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, category, context_json, ai_response_json, raw_ai_response, final_choice, outcome_notes, created_at, updated_at
		 FROM decisions WHERE user_id=? AND created_at BETWEEN ? AND ?
		 ORDER BY created_at ASC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecisions(rows)
}

// UpdateOutcome sets final_choice and outcome_notes on an existing
// decision.  The AI verdict and context are never mutated.
func (r *DecisionRepo) UpdateOutcome(ctx context.Context, id uint64, finalChoice, outcomeNotes *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE decisions SET final_choice=?, outcome_notes=? WHERE id=?",
		finalChoice, outcomeNotes, id)
	return err
}

func scanDecision(row rowScanner) (*model.Decision, error) {
	var d model.Decision
	var contextJSON []byte
	var aiJSON []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Category, &contextJSON, &aiJSON, &d.RawAIResponse,
		&d.FinalChoice, &d.OutcomeNotes, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contextJSON, &d.Context); err != nil {
		return nil, err
	}
	if len(aiJSON) > 0 {
		d.AIResponse = &model.DecisionVerdict{}
		if err := json.Unmarshal(aiJSON, d.AIResponse); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

func collectDecisions(rows *sql.Rows) ([]model.Decision, error) {
	out := []model.Decision{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
