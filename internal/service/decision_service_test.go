package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/discipline-tracker/internal/ai"
	"github.com/iliyamo/discipline-tracker/internal/model"
	"github.com/iliyamo/discipline-tracker/internal/repository"
)

// In-memory collaborators for the orchestrator tests.

type fakeDoctrines struct {
	doctrine *model.Doctrine
	err      error
}

func (f *fakeDoctrines) GetByUser(ctx context.Context, userID uint64) (*model.Doctrine, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.doctrine == nil {
		return nil, repository.ErrNotFound
	}
	return f.doctrine, nil
}

type fakeCheckins struct {
	today *model.DailyCheckin
	week  []model.DailyCheckin
}

func (f *fakeCheckins) GetForDate(ctx context.Context, userID uint64, date time.Time) (*model.DailyCheckin, error) {
	if f.today == nil {
		return nil, repository.ErrNotFound
	}
	return f.today, nil
}

func (f *fakeCheckins) ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.DailyCheckin, error) {
	return f.week, nil
}

type fakeDecisions struct {
	created []model.Decision
	week    []model.Decision
	err     error
}

func (f *fakeDecisions) Create(ctx context.Context, d *model.Decision) error {
	if f.err != nil {
		return f.err
	}
	d.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, *d)
	return nil
}

func (f *fakeDecisions) ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.Decision, error) {
	return f.week, nil
}

type fakeGateway struct {
	result ai.ChatResult
	err    error

	calls      int
	lastSystem string
	lastUser   string
	lastTemp   float64
	lastMax    int
}

func (f *fakeGateway) RequestChatCompletion(ctx context.Context, systemMessage, userMessage string, temperature float64, maxTokens int) (ai.ChatResult, error) {
	f.calls++
	f.lastSystem = systemMessage
	f.lastUser = userMessage
	f.lastTemp = temperature
	f.lastMax = maxTokens
	if f.err != nil {
		return ai.ChatResult{}, f.err
	}
	return f.result, nil
}

func testDoctrine() *model.Doctrine {
	return &model.Doctrine{
		ID:     1,
		UserID: 7,
		Goals:  []model.Goal{{Rank: 1, Goal: "ship"}},
		Rules:  []string{"no distractions"},
		Habits: []model.Habit{{Habit: "run", Trigger: "morning"}},
		WeeklyTargets: []model.WeeklyTarget{
			{Target: "deep work", Metric: "hours", Current: 2, Goal: 10},
		},
	}
}

func testCheckin() *model.DailyCheckin {
	return &model.DailyCheckin{
		ID:          2,
		UserID:      7,
		CheckinDate: time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		Energy:      7,
		Mood:        6,
		Missions:    []string{"write"},
	}
}

func testContext() model.DecisionContext {
	return model.DecisionContext{
		What: "take the contract", Why: "money", When: "tomorrow",
		Urgency: "medium", EstimatedImpact: "high",
	}
}

const approveContent = `{
	"verdict": "approve",
	"confidence": 88,
	"reasoning": ["aligned with goal 1", "impact is high"],
	"risks": [],
	"better_option": "",
	"next_steps": ["sign it"]
}`

func newDecisionService(doctrines *fakeDoctrines, checkins *fakeCheckins, decisions *fakeDecisions, gw *fakeGateway) *DecisionService {
	svc := NewDecisionService(doctrines, checkins, decisions, gw)
	svc.Now = func() time.Time { return time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC) }
	return svc
}

func TestEvaluateRequiresDoctrine(t *testing.T) {
	decisions := &fakeDecisions{}
	gw := &fakeGateway{}
	svc := newDecisionService(&fakeDoctrines{}, &fakeCheckins{today: testCheckin()}, decisions, gw)

	_, err := svc.Evaluate(context.Background(), 7, "work", testContext())
	assert.ErrorIs(t, err, ErrDoctrineRequired)
	assert.Zero(t, gw.calls)
	assert.Empty(t, decisions.created)
}

func TestEvaluateRequiresTodayCheckin(t *testing.T) {
	decisions := &fakeDecisions{}
	gw := &fakeGateway{}
	svc := newDecisionService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeCheckins{}, decisions, gw)

	_, err := svc.Evaluate(context.Background(), 7, "work", testContext())
	assert.ErrorIs(t, err, ErrCheckinRequired)
	assert.Zero(t, gw.calls)
	assert.Empty(t, decisions.created)
}

func TestEvaluateGatewayFailureLeavesNothingPersisted(t *testing.T) {
	decisions := &fakeDecisions{}
	gw := &fakeGateway{err: &ai.UnavailableError{Message: "down", StatusCode: 503}}
	svc := newDecisionService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeCheckins{today: testCheckin()}, decisions, gw)

	_, err := svc.Evaluate(context.Background(), 7, "work", testContext())
	var unavailable *ai.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Empty(t, decisions.created)
}

func TestEvaluateInvalidVerdictLeavesNothingPersisted(t *testing.T) {
	decisions := &fakeDecisions{}
	gw := &fakeGateway{result: ai.ChatResult{Raw: "{}", Content: `{"verdict":"approve"}`}}
	svc := newDecisionService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeCheckins{today: testCheckin()}, decisions, gw)

	_, err := svc.Evaluate(context.Background(), 7, "work", testContext())
	var invalid *ai.InvalidResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, gw.calls)
	assert.Empty(t, decisions.created)
}

func TestEvaluateStoreFailurePropagates(t *testing.T) {
	boom := errors.New("insert failed")
	decisions := &fakeDecisions{err: boom}
	gw := &fakeGateway{result: ai.ChatResult{Raw: "raw-body", Content: approveContent}}
	svc := newDecisionService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeCheckins{today: testCheckin()}, decisions, gw)

	_, err := svc.Evaluate(context.Background(), 7, "work", testContext())
	assert.ErrorIs(t, err, boom)
}

func TestEvaluateHappyPath(t *testing.T) {
	decisions := &fakeDecisions{}
	gw := &fakeGateway{result: ai.ChatResult{Raw: "raw-body", Content: approveContent}}
	svc := newDecisionService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeCheckins{today: testCheckin()}, decisions, gw)

	decision, err := svc.Evaluate(context.Background(), 7, "work", testContext())
	require.NoError(t, err)

	require.Len(t, decisions.created, 1)
	assert.Equal(t, uint64(7), decision.UserID)
	assert.Equal(t, "work", decision.Category)
	require.NotNil(t, decision.AIResponse)
	assert.Equal(t, "approve", decision.AIResponse.Verdict)
	assert.Equal(t, 88, decision.AIResponse.Confidence)
	require.NotNil(t, decision.RawAIResponse)
	assert.Equal(t, "raw-body", *decision.RawAIResponse)

	// Upstream parameters match the decision contract.
	assert.Equal(t, 1, gw.calls)
	assert.InDelta(t, 0.2, gw.lastTemp, 1e-9)
	assert.Equal(t, 800, gw.lastMax)
	assert.Contains(t, gw.lastUser, `"what": "take the contract"`)
}
