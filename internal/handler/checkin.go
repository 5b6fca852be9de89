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
)

// CheckinStore is the persistence surface the handler needs.
// *repository.CheckinRepo satisfies it.
type CheckinStore interface {
	Create(ctx context.Context, c *model.DailyCheckin) error
	GetForDate(ctx context.Context, userID uint64, date time.Time) (*model.DailyCheckin, error)
	List(ctx context.Context, userID uint64, page, pageSize int) ([]model.DailyCheckin, int, error)
}

// CheckinHandler serves the daily check-in endpoints.  Check-ins are
// create-and-read only; there is no update once a day is recorded.
type CheckinHandler struct {
	Checkins CheckinStore
	Now      func() time.Time
}

func NewCheckinHandler(r CheckinStore) *CheckinHandler {
	return &CheckinHandler{Checkins: r, Now: time.Now}
}

type storeCheckinReq struct {
	Energy   int      `json:"energy"`
	Mood     int      `json:"mood"`
	Missions []string `json:"missions"`
	Notes    *string  `json:"notes"`
}

func (r *storeCheckinReq) validate() []string {
	var bad []string
	if r.Energy < 1 || r.Energy > 10 {
		bad = append(bad, "energy")
	}
	if r.Mood < 1 || r.Mood > 10 {
		bad = append(bad, "mood")
	}
	if len(r.Missions) < 1 || len(r.Missions) > 3 {
		bad = append(bad, "missions")
	} else {
		for _, m := range r.Missions {
			if strings.TrimSpace(m) == "" {
				bad = append(bad, "missions")
				break
			}
		}
	}
	return bad
}

// Store records today's check-in.  A second attempt on the same
// calendar day yields 409 daily_checkin_exists.
func (h *CheckinHandler) Store(c echo.Context) error {
	uid := authedUserID(c)
	var req storeCheckinReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid body", nil)
	}
	if bad := req.validate(); len(bad) > 0 {
		return apiError(c, http.StatusUnprocessableEntity, CodeValidationFailed,
			"check-in payload is invalid", echo.Map{"fields": bad})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checkin := &model.DailyCheckin{
		UserID:      uid,
		CheckinDate: h.Now().UTC(),
		Energy:      req.Energy,
		Mood:        req.Mood,
		Missions:    req.Missions,
		Notes:       req.Notes,
	}
	if err := h.Checkins.Create(ctx, checkin); err != nil {
		if err == repository.ErrCheckinExists {
			return apiError(c, http.StatusConflict, CodeCheckinExists,
				"A daily check-in already exists for today.", nil)
		}
		return apiError(c, http.StatusInternalServerError, CodeInternal, "create check-in failed", nil)
	}

	// Broker failures must never fail the request.
	_ = queue.PublishDisciplineEvent(ctx, queue.DisciplineEvent{
		Type:       queue.EventCheckinCreated,
		UserID:     uid,
		EntityID:   checkin.ID,
		Detail:     "daily check-in recorded",
		OccurredAt: h.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, checkin)
}

// Today returns the caller's check-in for the current date, 404 when
// none exists yet.
func (h *CheckinHandler) Today(c echo.Context) error {
	uid := authedUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checkin, err := h.Checkins.GetForDate(ctx, uid, h.Now().UTC())
	if err == repository.ErrNotFound {
		return apiError(c, http.StatusNotFound, CodeNotFound, "No daily check-in found for today.", nil)
	}
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "load check-in failed", nil)
	}
	return c.JSON(http.StatusOK, checkin)
}

// Index lists the caller's check-ins newest first.
func (h *CheckinHandler) Index(c echo.Context) error {
	uid := authedUserID(c)
	page := pageParam(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Checkins.List(ctx, uid, page, pageSize)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "list check-ins failed", nil)
	}
	return c.JSON(http.StatusOK, pageResp{Data: items, Page: page, Total: total})
}
