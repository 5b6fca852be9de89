package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/repository"
)

// DoctrineHandler serves the single-doctrine-per-user endpoints.
type DoctrineHandler struct {
	Doctrines *repository.DoctrineRepo
}

func NewDoctrineHandler(d *repository.DoctrineRepo) *DoctrineHandler {
	return &DoctrineHandler{Doctrines: d}
}

type upsertDoctrineReq struct {
	Goals         []model.Goal         `json:"goals"`
	Rules         []string             `json:"rules"`
	Habits        []model.Habit        `json:"habits"`
	WeeklyTargets []model.WeeklyTarget `json:"weekly_targets"`
}

// validate enforces the doctrine invariants: four non-empty lists,
// unique goal ranks, no blank strings anywhere.
func (r *upsertDoctrineReq) validate() []string {
	var bad []string
	if len(r.Goals) == 0 {
		bad = append(bad, "goals")
	}
	ranks := map[int]bool{}
	for _, g := range r.Goals {
		if strings.TrimSpace(g.Goal) == "" || ranks[g.Rank] {
			bad = append(bad, "goals")
			break
		}
		ranks[g.Rank] = true
	}
	if len(r.Rules) == 0 {
		bad = append(bad, "rules")
	}
	for _, rule := range r.Rules {
		if strings.TrimSpace(rule) == "" {
			bad = append(bad, "rules")
			break
		}
	}
	if len(r.Habits) == 0 {
		bad = append(bad, "habits")
	}
	for _, h := range r.Habits {
		if strings.TrimSpace(h.Habit) == "" || strings.TrimSpace(h.Trigger) == "" {
			bad = append(bad, "habits")
			break
		}
	}
	if len(r.WeeklyTargets) == 0 {
		bad = append(bad, "weekly_targets")
	}
	for _, t := range r.WeeklyTargets {
		if strings.TrimSpace(t.Target) == "" || strings.TrimSpace(t.Metric) == "" {
			bad = append(bad, "weekly_targets")
			break
		}
	}
	return dedupe(bad)
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Upsert creates or fully replaces the caller's doctrine.
func (h *DoctrineHandler) Upsert(c echo.Context) error {
	uid := authedUserID(c)
	var req upsertDoctrineReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid body", nil)
	}
	if bad := req.validate(); len(bad) > 0 {
		return apiError(c, http.StatusUnprocessableEntity, CodeValidationFailed,
			"doctrine payload is invalid", echo.Map{"fields": bad})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doctrine, err := h.Doctrines.Upsert(ctx, uid, req.Goals, req.Rules, req.Habits, req.WeeklyTargets)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "save doctrine failed", nil)
	}
	return c.JSON(http.StatusOK, doctrine)
}

// Show returns the caller's doctrine, 404 when none is set yet.
func (h *DoctrineHandler) Show(c echo.Context) error {
	uid := authedUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doctrine, err := h.Doctrines.GetByUser(ctx, uid)
	if err == repository.ErrNotFound {
		return apiError(c, http.StatusNotFound, CodeNotFound, "doctrine not found", nil)
	}
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "load doctrine failed", nil)
	}
	return c.JSON(http.StatusOK, doctrine)
}
