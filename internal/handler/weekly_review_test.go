package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/repository"
)

type fakeWeeklyReviewStore struct {
	review *model.WeeklyReview
}

func (f *fakeWeeklyReviewStore) GetByID(ctx context.Context, id uint64) (*model.WeeklyReview, error) {
	if f.review == nil || f.review.ID != id {
		return nil, repository.ErrNotFound
	}
	rv := *f.review
	return &rv, nil
}

func (f *fakeWeeklyReviewStore) List(ctx context.Context, userID uint64, page, pageSize int) ([]model.WeeklyReview, int, error) {
	return []model.WeeklyReview{}, 0, nil
}

func storedReview(owner uint64) *model.WeeklyReview {
	return &model.WeeklyReview{
		ID:        3,
		UserID:    owner,
		WeekStart: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		WeekEnd:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Review: model.WeeklyReviewAnalysis{
			WeekSummary:            "Solid week.",
			ComplianceRate:         0.8,
			PatternsDetected:       []string{},
			StrongestDay:           "Monday",
			WeakestDay:             "Friday",
			OverrideAnalysis:       "None.",
			Directive:              "Keep going.",
			DoctrineAlignmentScore: 80,
		},
	}
}

func TestWeeklyReviewShowDeniesForeignOwner(t *testing.T) {
	h := NewWeeklyReviewHandler(&fakeWeeklyReviewStore{review: storedReview(99)}, nil)
	c, rec := newTestContext(http.MethodGet, "/v1/weekly-reviews/3", "", 7, "3")

	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"forbidden"`)
}

func TestWeeklyReviewShowOwner(t *testing.T) {
	h := NewWeeklyReviewHandler(&fakeWeeklyReviewStore{review: storedReview(7)}, nil)
	c, rec := newTestContext(http.MethodGet, "/v1/weekly-reviews/3", "", 7, "3")

	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"week_summary":"Solid week."`)
}

func TestWeeklyReviewShowNotFound(t *testing.T) {
	h := NewWeeklyReviewHandler(&fakeWeeklyReviewStore{}, nil)
	c, rec := newTestContext(http.MethodGet, "/v1/weekly-reviews/3", "", 7, "3")

	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}
