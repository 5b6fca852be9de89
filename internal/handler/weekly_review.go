package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/queue"
	"github.com/iliyamo/discipline-tracker/internal/repository"
	"github.com/iliyamo/discipline-tracker/internal/service"
)

// WeeklyReviewStore is the read surface the handler needs.
// *repository.WeeklyReviewRepo satisfies it.
type WeeklyReviewStore interface {
	GetByID(ctx context.Context, id uint64) (*model.WeeklyReview, error)
	List(ctx context.Context, userID uint64, page, pageSize int) ([]model.WeeklyReview, int, error)
}

// WeeklyReviewHandler serves review generation and read endpoints.
type WeeklyReviewHandler struct {
	Reviews WeeklyReviewStore
	Service *service.ReviewService
}

func NewWeeklyReviewHandler(r WeeklyReviewStore, s *service.ReviewService) *WeeklyReviewHandler {
	return &WeeklyReviewHandler{Reviews: r, Service: s}
}

// Generate builds the current week's review and upserts it; calling
// twice in one week overwrites the stored payload.  201 on success.
func (h *WeeklyReviewHandler) Generate(c echo.Context) error {
	uid := authedUserID(c)

	// One upstream call bounded at 30s may be involved; use the
	// request context rather than the 5s DB budget.
	review, err := h.Service.Generate(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrDoctrineRequired) {
			return apiError(c, http.StatusUnprocessableEntity, CodeDoctrineRequired,
				"Doctrine must be set before generating weekly review.", nil)
		}
		return aiFailure(c, err)
	}

	_ = queue.PublishDisciplineEvent(c.Request().Context(), queue.DisciplineEvent{
		Type:       queue.EventReviewGenerated,
		UserID:     uid,
		EntityID:   review.ID,
		Detail:     "week " + review.WeekStart.Format("2006-01-02"),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, review)
}

// Index lists the caller's reviews, most recent week first.
func (h *WeeklyReviewHandler) Index(c echo.Context) error {
	uid := authedUserID(c)
	page := pageParam(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Reviews.List(ctx, uid, page, pageSize)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "list reviews failed", nil)
	}
	return c.JSON(http.StatusOK, pageResp{Data: items, Page: page, Total: total})
}

// Show returns one review; requester must be the owner.
func (h *WeeklyReviewHandler) Show(c echo.Context) error {
	uid := authedUserID(c)
	id, err := idParam(c)
	if err != nil {
		return apiError(c, http.StatusBadRequest, CodeValidationFailed, "invalid id", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	review, err := h.Reviews.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return apiError(c, http.StatusNotFound, CodeNotFound, "review not found", nil)
	}
	if err != nil {
		return apiError(c, http.StatusInternalServerError, CodeInternal, "load review failed", nil)
	}
	if review.UserID != uid {
		return apiError(c, http.StatusForbidden, CodeForbidden, "not your review", nil)
	}
	return c.JSON(http.StatusOK, review)
}
