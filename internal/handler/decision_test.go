package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/repository"
)

// newTestContext builds an echo context the way the JWT middleware
// leaves it: authenticated user id stored under "user_id".
func newTestContext(method, target, body string, uid uint64, id string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	c.Set("user_id", uid)
	return c, rec
}

type fakeDecisionStore struct {
	decision *model.Decision
	updated  bool
}

func (f *fakeDecisionStore) GetByID(ctx context.Context, id uint64) (*model.Decision, error) {
	if f.decision == nil || f.decision.ID != id {
		return nil, repository.ErrNotFound
	}
	d := *f.decision
	return &d, nil
}

func (f *fakeDecisionStore) List(ctx context.Context, userID uint64, category string, page, pageSize int) ([]model.Decision, int, error) {
	return []model.Decision{}, 0, nil
}

func (f *fakeDecisionStore) UpdateOutcome(ctx context.Context, id uint64, finalChoice, outcomeNotes *string) error {
	f.updated = true
	return nil
}

func storedDecision(owner uint64) *model.Decision {
	return &model.Decision{
		ID:       5,
		UserID:   owner,
		Category: "work",
		Context: model.DecisionContext{
			What: "take the contract", Why: "money", When: "tomorrow",
			Urgency: "medium", EstimatedImpact: "high",
		},
		AIResponse: &model.DecisionVerdict{
			Verdict: "approve", Confidence: 80,
			Reasoning: []string{"a", "b"}, Risks: []string{}, NextSteps: []string{"go"},
		},
	}
}

func TestDecisionShowDeniesForeignOwner(t *testing.T) {
	h := NewDecisionHandler(&fakeDecisionStore{decision: storedDecision(99)}, nil)
	c, rec := newTestContext(http.MethodGet, "/v1/decisions/5", "", 7, "5")

	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"forbidden"`)
}

func TestDecisionShowOwner(t *testing.T) {
	h := NewDecisionHandler(&fakeDecisionStore{decision: storedDecision(7)}, nil)
	c, rec := newTestContext(http.MethodGet, "/v1/decisions/5", "", 7, "5")

	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"work"`)
}

func TestDecisionShowNotFound(t *testing.T) {
	h := NewDecisionHandler(&fakeDecisionStore{}, nil)
	c, rec := newTestContext(http.MethodGet, "/v1/decisions/5", "", 7, "5")

	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}

func TestDecisionUpdateOutcomeDeniesForeignOwner(t *testing.T) {
	store := &fakeDecisionStore{decision: storedDecision(99)}
	h := NewDecisionHandler(store, nil)
	c, rec := newTestContext(http.MethodPatch, "/v1/decisions/5/outcome",
		`{"final_choice":"signed it"}`, 7, "5")

	require.NoError(t, h.UpdateOutcome(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"forbidden"`)
	assert.False(t, store.updated)
}

func TestDecisionUpdateOutcomeRequiresAField(t *testing.T) {
	store := &fakeDecisionStore{decision: storedDecision(7)}
	h := NewDecisionHandler(store, nil)
	c, rec := newTestContext(http.MethodPatch, "/v1/decisions/5/outcome", `{}`, 7, "5")

	require.NoError(t, h.UpdateOutcome(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, store.updated)
}

func TestDecisionUpdateOutcomeOwner(t *testing.T) {
	store := &fakeDecisionStore{decision: storedDecision(7)}
	h := NewDecisionHandler(store, nil)
	c, rec := newTestContext(http.MethodPatch, "/v1/decisions/5/outcome",
		`{"final_choice":"signed it","outcome_notes":"went well"}`, 7, "5")

	require.NoError(t, h.UpdateOutcome(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.updated)
}
