package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/discipline-tracker/internal/model"
)

func fixtureDoctrine() *model.Doctrine {
	return &model.Doctrine{
		ID:     1,
		UserID: 7,
		Goals: []model.Goal{
			{Rank: 1, Goal: "ship the product"},
			{Rank: 2, Goal: "train daily"},
		},
		Rules:  []string{"no social media before noon", "sleep by 23:00"},
		Habits: []model.Habit{{Habit: "morning run", Trigger: "after waking up"}},
		WeeklyTargets: []model.WeeklyTarget{
			{Target: "deep work", Metric: "hours", Current: 4, Goal: 20},
		},
	}
}

func fixtureCheckin() *model.DailyCheckin {
	notes := "slept well"
	return &model.DailyCheckin{
		ID:          3,
		UserID:      7,
		CheckinDate: time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		Energy:      8,
		Mood:        7,
		Missions:    []string{"finish the report", "gym session"},
		Notes:       &notes,
	}
}

func fixtureContext() model.DecisionContext {
	return model.DecisionContext{
		What:            "buy a new laptop",
		Why:             "current one is slow",
		When:            "this weekend",
		Urgency:         "low",
		EstimatedImpact: "2000 EUR",
		Alternatives:    []string{"upgrade RAM", "wait for sale"},
	}
}

func TestBuildDecisionPromptIsDeterministic(t *testing.T) {
	sys1, user1, err := BuildDecisionPrompt(fixtureDoctrine(), fixtureCheckin(), "financial", fixtureContext())
	require.NoError(t, err)
	sys2, user2, err := BuildDecisionPrompt(fixtureDoctrine(), fixtureCheckin(), "financial", fixtureContext())
	require.NoError(t, err)

	assert.Equal(t, sys1, sys2)
	assert.Equal(t, user1, user2)
}

func TestBuildDecisionPromptContent(t *testing.T) {
	sys, user, err := BuildDecisionPrompt(fixtureDoctrine(), fixtureCheckin(), "financial", fixtureContext())
	require.NoError(t, err)

	assert.Equal(t, decisionSystemMessage, sys)
	assert.Contains(t, sys, "Return ONLY raw JSON")

	// The schema is embedded literally, then the input payload.
	assert.Contains(t, user, decisionSchemaText)
	assert.Contains(t, user, `"category": "financial"`)
	assert.Contains(t, user, `"what": "buy a new laptop"`)
	assert.Contains(t, user, `"energy": 8`)
	assert.Contains(t, user, "no social media before noon")
	assert.Contains(t, user, "- reasoning must be array of 2 to 6 strings")
	assert.True(t, strings.Index(user, decisionSchemaText) < strings.Index(user, "Input payload:"))
}

func TestBuildWeeklyReviewPromptContent(t *testing.T) {
	weekStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	weekEnd := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)

	reason := "travel day"
	logs := []model.DisciplineLog{
		{UserID: 7, LogType: model.LogTypeComplied, CreatedAt: weekStart.Add(9 * time.Hour)},
		{UserID: 7, LogType: model.LogTypeOverride, Reason: &reason, CreatedAt: weekStart.Add(33 * time.Hour)},
	}
	checkins := []model.DailyCheckin{*fixtureCheckin()}

	sys, user, err := BuildWeeklyReviewPrompt(fixtureDoctrine(), checkins, nil, logs, weekStart, weekEnd)
	require.NoError(t, err)

	assert.Equal(t, reviewSystemMessage, sys)
	assert.Contains(t, user, reviewSchemaText)
	assert.Contains(t, user, `"start": "2026-08-24T00:00:00Z"`)
	assert.Contains(t, user, `"end": "2026-08-30T18:00:00Z"`)
	assert.Contains(t, user, `"checkin_date": "2026-08-26"`)
	assert.Contains(t, user, `"log_type": "override"`)
	assert.Contains(t, user, `"reason": "travel day"`)
	// Empty record sets serialize as [] rather than null.
	assert.Contains(t, user, `"decisions": []`)
}

func TestBuildWeeklyReviewPromptIsDeterministic(t *testing.T) {
	weekStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 6)

	_, user1, err := BuildWeeklyReviewPrompt(fixtureDoctrine(), nil, nil, nil, weekStart, weekEnd)
	require.NoError(t, err)
	_, user2, err := BuildWeeklyReviewPrompt(fixtureDoctrine(), nil, nil, nil, weekStart, weekEnd)
	require.NoError(t, err)
	assert.Equal(t, user1, user2)
}
