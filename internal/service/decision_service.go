// Package service holds the evaluation orchestrators that compose
// repositories, the prompt builder and the model gateway.  Collaborator
// failures propagate unchanged: nothing is persisted when any pipeline
// step fails.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/discipline-tracker/internal/ai"
	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/repository"
)

// Precondition failures, user-correctable (HTTP 422).
var (
	ErrDoctrineRequired = errors.New("doctrine must be set first")
	ErrCheckinRequired  = errors.New("daily check-in is required first")
)

// Evaluation parameters sent upstream, matching the contract the
// prompts were written for.
const (
	decisionTemperature = 0.2
	decisionMaxTokens   = 800
	reviewTemperature   = 0.2
	reviewMaxTokens     = 1200
)

// DoctrineSource provides a user's doctrine or repository.ErrNotFound.
type DoctrineSource interface {
	GetByUser(ctx context.Context, userID uint64) (*model.Doctrine, error)
}

// CheckinSource provides check-in lookups needed by the pipelines.
type CheckinSource interface {
	GetForDate(ctx context.Context, userID uint64, date time.Time) (*model.DailyCheckin, error)
	ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.DailyCheckin, error)
}

// DecisionStore persists evaluated decisions and lists them for the
// weekly window.
type DecisionStore interface {
	Create(ctx context.Context, d *model.Decision) error
	ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.Decision, error)
}

// ChatGateway is the outbound model call.  *ai.Client satisfies it.
type ChatGateway interface {
	RequestChatCompletion(ctx context.Context, systemMessage, userMessage string, temperature float64, maxTokens int) (ai.ChatResult, error)
}

// DecisionService runs the decision-evaluation pipeline: precondition
// checks, prompt construction, one gateway call, strict validation,
// then persistence.
type DecisionService struct {
	Doctrines DoctrineSource
	Checkins  CheckinSource
	Decisions DecisionStore
	Gateway   ChatGateway
	Now       func() time.Time
}

func NewDecisionService(doctrines DoctrineSource, checkins CheckinSource, decisions DecisionStore, gateway ChatGateway) *DecisionService {
	return &DecisionService{
		Doctrines: doctrines,
		Checkins:  checkins,
		Decisions: decisions,
		Gateway:   gateway,
		Now:       time.Now,
	}
}

// Evaluate checks preconditions in order (doctrine first, then today's
// check-in), runs the AI pipeline and stores the resulting decision.
// Gateway and validation errors are returned as-is; no decision row
// exists after a failed call.
func (s *DecisionService) Evaluate(ctx context.Context, userID uint64, category string, decisionCtx model.DecisionContext) (*model.Decision, error) {
	doctrine, err := s.Doctrines.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDoctrineRequired
	}
	if err != nil {
		return nil, err
	}

	today := s.Now().UTC()
	checkin, err := s.Checkins.GetForDate(ctx, userID, today)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCheckinRequired
	}
	if err != nil {
		return nil, err
	}

	systemMsg, userMsg, err := ai.BuildDecisionPrompt(doctrine, checkin, category, decisionCtx)
	if err != nil {
		return nil, err
	}

	result, err := s.Gateway.RequestChatCompletion(ctx, systemMsg, userMsg, decisionTemperature, decisionMaxTokens)
	if err != nil {
		return nil, err
	}

	verdict, err := ai.ValidateDecisionPayload(result.Content)
	if err != nil {
		return nil, err
	}

	decision := &model.Decision{
		UserID:        userID,
		Category:      category,
		Context:       decisionCtx,
		AIResponse:    verdict,
		RawAIResponse: &result.Raw,
	}
	if err := s.Decisions.Create(ctx, decision); err != nil {
		return nil, err
	}
	return decision, nil
}
