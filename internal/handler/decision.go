package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/queue"
	"github.com/iliyamo/discipline-tracker/internal/repository"
	"github.com/iliyamo/discipline-tracker/internal/service"
)

// DecisionStore is the persistence surface the handler reads and
// updates through.  *repository.DecisionRepo satisfies it.
type DecisionStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Decision, error)
	List(ctx context.Context, userID uint64, category string, page, pageSize int) ([]model.Decision, int, error)
	UpdateOutcome(ctx context.Context, id uint64, finalChoice, outcomeNotes *string) error
}

// DecisionHandler serves decision submission, listing and outcome
// updates.  Submission runs the full evaluation pipeline and only
// persists after the AI verdict validated.
type DecisionHandler struct {
	Decisions DecisionStore
	Service   *service.DecisionService
}

func NewDecisionHandler(r DecisionStore, s *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{Decisions: r, Service: s}
}

type storeDecisionReq struct {
	Category string                `json:"category"`
	Context  model.DecisionContext `json:"context"`
}

func (r *storeDecisionReq) validate() []string {
	var bad []string
	if !model.ValidCategory(r.Category) {
		bad = append(bad, "category")
	}
	if strings.TrimSpace(r.Context.What) == "" {
		bad = append(bad, "context.what")
	}
	if strings.TrimSpace(r.Context.Why) == "" {
		bad = append(bad, "context.why")
	}
	if strings.TrimSpace(r.Context.When) == "" {
		bad = append(bad, "context.when")
	}
	switch r.Context.Urgency {
	case "low", "medium", "high":
	default:
		bad = append(bad, "context.urgency")
	}
	if strings.TrimSpace(r.Context.EstimatedImpact) == "" {
		bad = append(bad, "context.estimated_impact")
	}
	for _, a := range r.Context.Alternatives {
		if strings.TrimSpace(a) == "" {
			bad = append(bad, "context.alternatives")
			break
		}
	}
	return bad
}

// Store submits a decision for AI evaluation.  Preconditions map to
// 422 (doctrine_required / daily_checkin_required); gateway failures
// to 503; contract violations to 422.  In all three cases no decision
// row is created.
func (h *DecisionHandler) Store(c echo.Context) error {
	uid := authedUserID(c)
	var req storeDecisionReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid body", nil)
	}
	if bad := req.validate(); len(bad) > 0 {
		return apiError(c, http.StatusUnprocessableEntity, CodeValidationFailed,
			"decision payload is invalid", echo.Map{"fields": bad})
	}

	// The pipeline includes one upstream call bounded at 30s, so the
	// request context is used as-is instead of the usual 5s DB budget.
	decision, err := h.Service.Evaluate(c.Request().Context(), uid, req.Category, req.Context)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDoctrineRequired):
			return apiError(c, http.StatusUnprocessableEntity, CodeDoctrineRequired,
				"Doctrine must be set before creating decisions.", nil)
		case errors.Is(err, service.ErrCheckinRequired):
			return apiError(c, http.StatusUnprocessableEntity, CodeCheckinRequired,
				"Daily check-in is required before creating decisions.", nil)
		default:
			return aiFailure(c, err)
		}
	}

	_ = queue.PublishDisciplineEvent(c.Request().Context(), queue.DisciplineEvent{
		Type:       queue.EventDecisionEvaluated,
		UserID:     uid,
		EntityID:   decision.ID,
		Detail:     "verdict " + decision.AIResponse.Verdict,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"decision":    decision,
		"ai_response": decision.AIResponse,
	})
}

// Index lists the caller's decisions newest first, optionally
// filtered by ?category=.
func (h *DecisionHandler) Index(c echo.Context) error {
	uid := authedUserID(c)
	page := pageParam(c)

	category := c.QueryParam("category")
	if category != "" && !model.ValidCategory(category) {
		return apiError(c, http.StatusUnprocessableEntity, CodeValidationFailed,
			"unknown category", echo.Map{"fields": []string{"category"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Decisions.List(ctx, uid, category, page, pageSize)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "list decisions failed", nil)
	}
	return c.JSON(http.StatusOK, pageResp{Data: items, Page: page, Total: total})
}

// Show returns one decision; requester must be the owner.
func (h *DecisionHandler) Show(c echo.Context) error {
	uid := authedUserID(c)
	id, err := idParam(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid id", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	decision, err := h.Decisions.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return apiError(c, http.StatusNotFound, CodeNotFound, "decision not found", nil)
	}
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "load decision failed", nil)
	}
	if decision.UserID != uid {
		return apiError(c, http.StatusForbidden, CodeForbidden, "not your decision", nil)
	}
	return c.JSON(http.StatusOK, decision)
}

type updateOutcomeReq struct {
	FinalChoice  *string `json:"final_choice"`
	OutcomeNotes *string `json:"outcome_notes"`
}

// UpdateOutcome records what the user actually did.  At least one of
// final_choice / outcome_notes must be non-empty.
func (h *DecisionHandler) UpdateOutcome(c echo.Context) error {
	uid := authedUserID(c)
	id, err := idParam(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid id", nil)
	}

	var req updateOutcomeReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid body", nil)
	}
	filled := func(s *string) bool { return s != nil && strings.TrimSpace(*s) != "" }
	if !filled(req.FinalChoice) && !filled(req.OutcomeNotes) {
		return apiError(c, http.StatusUnprocessableEntity, CodeValidationFailed,
			"At least one of final_choice or outcome_notes is required.", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	decision, err := h.Decisions.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return apiError(c, http.StatusNotFound, CodeNotFound, "decision not found", nil)
	}
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "load decision failed", nil)
	}
	if decision.UserID != uid {
		return apiError(c, http.StatusForbidden, CodeForbidden, "not your decision", nil)
	}

	if err := h.Decisions.UpdateOutcome(ctx, id, req.FinalChoice, req.OutcomeNotes); err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "update outcome failed", nil)
	}
	decision.FinalChoice = req.FinalChoice
	decision.OutcomeNotes = req.OutcomeNotes
	return c.JSON(http.StatusOK, decision)
}
