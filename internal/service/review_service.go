package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/discipline-tracker/internal/ai"
	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/repository"
)

// Review generation strategies.  The AI strategy runs the full
// prompt→gateway→validate pipeline; the local strategy aggregates the
// week's logs without any network call and fills the same schema, so
// the stored payload shape is identical either way.
const (
	StrategyAI    = "ai"
	StrategyLocal = "local"
)

// LogSource lists discipline logs for the weekly window.
type LogSource interface {
	ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.DisciplineLog, error)
}

// ReviewStore upserts one review per (user, week_start).
type ReviewStore interface {
	Upsert(ctx context.Context, rv *model.WeeklyReview) (*model.WeeklyReview, error)
}

// ReviewService generates the weekly review for the current week
// window: Monday 00:00 UTC through the moment of generation.
type ReviewService struct {
	Doctrines DoctrineSource
	Checkins  CheckinSource
	Decisions DecisionStore
	Logs      LogSource
	Reviews   ReviewStore
	Gateway   ChatGateway
	Strategy  string
	Now       func() time.Time
}

func NewReviewService(doctrines DoctrineSource, checkins CheckinSource, decisions DecisionStore, logs LogSource, reviews ReviewStore, gateway ChatGateway, strategy string) *ReviewService {
	if strategy != StrategyLocal {
		strategy = StrategyAI
	}
	return &ReviewService{
		Doctrines: doctrines,
		Checkins:  checkins,
		Decisions: decisions,
		Logs:      logs,
		Reviews:   reviews,
		Gateway:   gateway,
		Strategy:  strategy,
		Now:       time.Now,
	}
}

// Generate builds the review for the current week and upserts it.
// Regenerating inside the same week overwrites the stored payload
// rather than creating a second row.  Gateway and validation errors
// propagate unchanged and nothing is written on failure.
func (s *ReviewService) Generate(ctx context.Context, userID uint64) (*model.WeeklyReview, error) {
	doctrine, err := s.Doctrines.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDoctrineRequired
	}
	if err != nil {
		return nil, err
	}

	weekStart, weekEnd := s.weekWindow()

	checkins, err := s.Checkins.ListRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	decisions, err := s.Decisions.ListRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	logs, err := s.Logs.ListRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	var analysis *model.WeeklyReviewAnalysis
	if s.Strategy == StrategyLocal {
		analysis = localAnalysis(checkins, decisions, logs, weekStart)
	} else {
		systemMsg, userMsg, err := ai.BuildWeeklyReviewPrompt(doctrine, checkins, decisions, logs, weekStart, weekEnd)
		if err != nil {
			return nil, err
		}
		result, err := s.Gateway.RequestChatCompletion(ctx, systemMsg, userMsg, reviewTemperature, reviewMaxTokens)
		if err != nil {
			return nil, err
		}
		analysis, err = ai.ValidateReviewPayload(result.Content)
		if err != nil {
			return nil, err
		}
	}

	return s.Reviews.Upsert(ctx, &model.WeeklyReview{
		UserID:    userID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Review:    *analysis,
	})
}

// weekWindow returns [Monday 00:00 UTC of the current week, now].
func (s *ReviewService) weekWindow() (time.Time, time.Time) {
	now := s.Now().UTC()
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -daysSinceMonday)
	return monday, now
}

// localAnalysis fills the review schema from the week's records
// without calling the model.  Compliance counts only complied,
// override and violation events; skipped events are neutral.
func localAnalysis(checkins []model.DailyCheckin, decisions []model.Decision, logs []model.DisciplineLog, weekStart time.Time) *model.WeeklyReviewAnalysis {
	var complied, overrides, violations int
	dayScore := map[string]int{}
	for _, l := range logs {
		day := l.CreatedAt.UTC().Weekday().String()
		switch l.LogType {
		case model.LogTypeComplied:
			complied++
			dayScore[day]++
		case model.LogTypeOverride:
			overrides++
		case model.LogTypeViolation:
			violations++
			dayScore[day]--
		}
	}

	relevant := complied + overrides + violations
	rate := 1.0
	if relevant > 0 {
		rate = float64(complied) / float64(relevant)
	}

	strongest, weakest := "none", "none"
	bestScore, worstScore := math.MinInt, math.MaxInt
	for day, score := range dayScore {
		if score > bestScore || (score == bestScore && day < strongest) {
			bestScore, strongest = score, day
		}
		if score < worstScore || (score == worstScore && day < weakest) {
			worstScore, weakest = score, day
		}
	}

	patterns := []string{}
	if violations > 0 {
		patterns = append(patterns, fmt.Sprintf("%d violation event(s) this week", violations))
	}
	if overrides > 0 {
		patterns = append(patterns, fmt.Sprintf("%d override event(s) this week", overrides))
	}

	overrideAnalysis := "No override events recorded."
	if overrides > 0 {
		overrideAnalysis = fmt.Sprintf("%d override event(s) recorded; review the stated reasons.", overrides)
	}

	directive := "Maintain the current cadence and keep violations at zero."
	if rate < 0.8 {
		directive = "Tighten execution: log every decision outcome and cut violation triggers."
	}

	return &model.WeeklyReviewAnalysis{
		WeekSummary: fmt.Sprintf("Week of %s: %d check-in(s), %d decision(s), %d discipline event(s).",
			weekStart.Format("2006-01-02"), len(checkins), len(decisions), len(logs)),
		ComplianceRate:         rate,
		PatternsDetected:       patterns,
		StrongestDay:           strongest,
		WeakestDay:             weakest,
		OverrideAnalysis:       overrideAnalysis,
		Directive:              directive,
		DoctrineAlignmentScore: int(math.Round(rate * 100)),
	}
}
