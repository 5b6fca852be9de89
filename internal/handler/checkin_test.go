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

type fakeCheckinStore struct {
	createErr error
	created   *model.DailyCheckin
}

func (f *fakeCheckinStore) Create(ctx context.Context, c *model.DailyCheckin) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = 1
	f.created = c
	return nil
}

func (f *fakeCheckinStore) GetForDate(ctx context.Context, userID uint64, date time.Time) (*model.DailyCheckin, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeCheckinStore) List(ctx context.Context, userID uint64, page, pageSize int) ([]model.DailyCheckin, int, error) {
	return []model.DailyCheckin{}, 0, nil
}

func TestCheckinStoreSecondSameDayConflicts(t *testing.T) {
	store := &fakeCheckinStore{createErr: repository.ErrCheckinExists}
	h := NewCheckinHandler(store)
	c, rec := newTestContext(http.MethodPost, "/v1/checkin",
		`{"energy":7,"mood":6,"missions":["write"]}`, 7, "")

	require.NoError(t, h.Store(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"daily_checkin_exists"`)
	assert.Nil(t, store.created)
}

func TestCheckinStoreRejectsInvalidPayload(t *testing.T) {
	store := &fakeCheckinStore{}
	h := NewCheckinHandler(store)
	c, rec := newTestContext(http.MethodPost, "/v1/checkin",
		`{"energy":11,"mood":0,"missions":[]}`, 7, "")

	require.NoError(t, h.Store(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"validation_failed"`)
	assert.Nil(t, store.created)
}

func TestCheckinTodayNotFound(t *testing.T) {
	h := NewCheckinHandler(&fakeCheckinStore{})
	c, rec := newTestContext(http.MethodGet, "/v1/checkin/today", "", 7, "")

	require.NoError(t, h.Today(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}
