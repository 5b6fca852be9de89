package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/queue"
	"github.com/iliyamo/discipline-tracker/internal/repository"
	"github.com/iliyamo/discipline-tracker/internal/streak"
)

// DisciplineLogHandler serves the append-only discipline log and the
// derived streak endpoint.
type DisciplineLogHandler struct {
	Logs      *repository.DisciplineLogRepo
	Decisions *repository.DecisionRepo
}

func NewDisciplineLogHandler(l *repository.DisciplineLogRepo, d *repository.DecisionRepo) *DisciplineLogHandler {
	return &DisciplineLogHandler{Logs: l, Decisions: d}
}

type storeLogReq struct {
	DecisionID *uint64 `json:"decision_id"`
	LogType    string  `json:"log_type"`
	Reason     *string `json:"reason"`
}

func (r *storeLogReq) validate() []string {
	var bad []string
	if !model.ValidLogType(r.LogType) {
		bad = append(bad, "log_type")
	}
	if r.LogType == model.LogTypeOverride || r.LogType == model.LogTypeViolation {
		if r.Reason == nil || strings.TrimSpace(*r.Reason) == "" {
			bad = append(bad, "reason")
		}
	}
	return bad
}

// Store appends a discipline event.  A referenced decision must exist
// and belong to the caller.
func (h *DisciplineLogHandler) Store(c echo.Context) error {
	uid := authedUserID(c)
	var req storeLogReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid body", nil)
	}
	if bad := req.validate(); len(bad) > 0 {
		return apiError(c, http.StatusUnprocessableEntity, CodeValidationFailed,
			"discipline log payload is invalid", echo.Map{"fields": bad})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.DecisionID != nil {
		decision, err := h.Decisions.GetByID(ctx, *req.DecisionID)
		if err == repository.ErrNotFound {
			return apiError(c, http.StatusNotFound, CodeNotFound, "decision not found", nil)
		}
		if err != nil {
			return apiError(c, http.StatusInternalServerError, CodeInternal, "load decision failed", nil)
		}
		if decision.UserID != uid {
			return apiError(c, http.StatusForbidden, CodeForbidden, "not your decision", nil)
		}
	}

	entry := &model.DisciplineLog{
		UserID:     uid,
		DecisionID: req.DecisionID,
		LogType:    req.LogType,
		Reason:     req.Reason,
	}
	if err := h.Logs.Create(ctx, entry); err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "create log failed", nil)
	}

	_ = queue.PublishDisciplineEvent(ctx, queue.DisciplineEvent{
		Type:       queue.EventLogRecorded,
		UserID:     uid,
		EntityID:   entry.ID,
		Detail:     "log_type " + entry.LogType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, entry)
}

// Index lists the caller's log events newest first.
func (h *DisciplineLogHandler) Index(c echo.Context) error {
	uid := authedUserID(c)
	page := pageParam(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Logs.List(ctx, uid, page, pageSize)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "list logs failed", nil)
	}
	return c.JSON(http.StatusOK, pageResp{Data: items, Page: page, Total: total})
}

// Streak derives the caller's compliance streaks from their full log
// history.  Empty history yields zeros and a null last_broken_date.
func (h *DisciplineLogHandler) Streak(c echo.Context) error {
	uid := authedUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	days, err := h.Logs.DailySummaries(ctx, uid)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "load log history failed", nil)
	}
	res := streak.Compute(days)

	var lastBroken *string
	if res.LastBroken != nil {
		s := res.LastBroken.Format("2006-01-02")
		lastBroken = &s
	}
	return c.JSON(http.StatusOK, echo.Map{
		"current_streak":   res.Current,
		"longest_streak":   res.Longest,
		"last_broken_date": lastBroken,
	})
}
