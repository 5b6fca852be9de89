package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/discipline-tracker/internal/ai"
	"github.com/iliyamo/discipline-tracker/internal/model"
)

type fakeLogs struct {
	week []model.DisciplineLog
}

func (f *fakeLogs) ListRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.DisciplineLog, error) {
	return f.week, nil
}

// fakeReviews keys rows by week_start, mirroring the storage-level
// unique constraint.
type fakeReviews struct {
	rows map[string]*model.WeeklyReview
}

func (f *fakeReviews) Upsert(ctx context.Context, rv *model.WeeklyReview) (*model.WeeklyReview, error) {
	if f.rows == nil {
		f.rows = map[string]*model.WeeklyReview{}
	}
	key := rv.WeekStart.Format("2006-01-02")
	if existing, ok := f.rows[key]; ok {
		existing.WeekEnd = rv.WeekEnd
		existing.Review = rv.Review
		return existing, nil
	}
	stored := *rv
	stored.ID = uint64(len(f.rows) + 1)
	f.rows[key] = &stored
	return &stored, nil
}

const reviewContent = `{
	"week_summary": "Solid execution overall.",
	"compliance_rate": 0.75,
	"patterns_detected": ["afternoon slumps"],
	"strongest_day": "Monday",
	"weakest_day": "Thursday",
	"override_analysis": "Two overrides, both rushed.",
	"directive": "Slow down before overriding.",
	"doctrine_alignment_score": 78
}`

func newReviewService(doctrines *fakeDoctrines, logs *fakeLogs, reviews *fakeReviews, gw *fakeGateway, strategy string) *ReviewService {
	svc := NewReviewService(doctrines, &fakeCheckins{}, &fakeDecisions{}, logs, reviews, gw, strategy)
	// A Wednesday afternoon.
	svc.Now = func() time.Time { return time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestWeekWindow(t *testing.T) {
	svc := &ReviewService{}
	cases := []struct {
		now        time.Time
		wantmonday time.Time
	}{
		// Wednesday mid-week.
		{time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		// Monday itself starts a fresh window.
		{time.Date(2026, 8, 24, 0, 5, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		// Sunday still belongs to the week that started the prior Monday.
		{time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		svc.Now = func() time.Time { return tc.now }
		start, end := svc.weekWindow()
		assert.True(t, start.Equal(tc.wantmonday), "start for now=%s", tc.now)
		assert.True(t, end.Equal(tc.now), "end for now=%s", tc.now)
	}
}

func TestGenerateRequiresDoctrine(t *testing.T) {
	reviews := &fakeReviews{}
	gw := &fakeGateway{}
	svc := newReviewService(&fakeDoctrines{}, &fakeLogs{}, reviews, gw, StrategyAI)

	_, err := svc.Generate(context.Background(), 7)
	assert.ErrorIs(t, err, ErrDoctrineRequired)
	assert.Zero(t, gw.calls)
	assert.Empty(t, reviews.rows)
}

func TestGenerateAIStrategy(t *testing.T) {
	reviews := &fakeReviews{}
	gw := &fakeGateway{result: ai.ChatResult{Raw: "raw", Content: reviewContent}}
	svc := newReviewService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeLogs{}, reviews, gw, StrategyAI)

	review, err := svc.Generate(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.calls)
	assert.InDelta(t, 0.2, gw.lastTemp, 1e-9)
	assert.Equal(t, 1200, gw.lastMax)

	assert.True(t, review.WeekStart.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Solid execution overall.", review.Review.WeekSummary)
	assert.Equal(t, 78, review.Review.DoctrineAlignmentScore)
	assert.Len(t, reviews.rows, 1)
}

func TestGenerateInvalidAIResponseWritesNothing(t *testing.T) {
	reviews := &fakeReviews{}
	gw := &fakeGateway{result: ai.ChatResult{Content: `{"week_summary":"only"}`}}
	svc := newReviewService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeLogs{}, reviews, gw, StrategyAI)

	_, err := svc.Generate(context.Background(), 7)
	var invalid *ai.InvalidResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, reviews.rows)
}

func TestGenerateGatewayFailureWritesNothing(t *testing.T) {
	reviews := &fakeReviews{}
	gw := &fakeGateway{err: &ai.UnavailableError{Message: "down"}}
	svc := newReviewService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeLogs{}, reviews, gw, StrategyAI)

	_, err := svc.Generate(context.Background(), 7)
	var unavailable *ai.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Empty(t, reviews.rows)
}

func TestGenerateOverwritesWithinSameWeek(t *testing.T) {
	reviews := &fakeReviews{}
	gw := &fakeGateway{result: ai.ChatResult{Content: reviewContent}}
	svc := newReviewService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeLogs{}, reviews, gw, StrategyAI)

	first, err := svc.Generate(context.Background(), 7)
	require.NoError(t, err)

	gw.result = ai.ChatResult{Content: `{
		"week_summary": "Regenerated.",
		"compliance_rate": 0.9,
		"patterns_detected": [],
		"strongest_day": "Tuesday",
		"weakest_day": "Wednesday",
		"override_analysis": "None.",
		"directive": "Keep going.",
		"doctrine_alignment_score": 91
	}`}
	second, err := svc.Generate(context.Background(), 7)
	require.NoError(t, err)

	assert.Len(t, reviews.rows, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Regenerated.", second.Review.WeekSummary)
}

func TestGenerateLocalStrategySkipsGateway(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2026, 8, d, hour, 0, 0, 0, time.UTC)
	}
	reason := "rushed"
	logs := &fakeLogs{week: []model.DisciplineLog{
		{LogType: model.LogTypeComplied, CreatedAt: day(24, 9)},  // Monday
		{LogType: model.LogTypeComplied, CreatedAt: day(24, 18)}, // Monday
		{LogType: model.LogTypeComplied, CreatedAt: day(25, 9)},  // Tuesday
		{LogType: model.LogTypeViolation, Reason: &reason, CreatedAt: day(26, 9)}, // Wednesday
		{LogType: model.LogTypeSkipped, CreatedAt: day(26, 12)},
	}}
	reviews := &fakeReviews{}
	gw := &fakeGateway{}
	svc := newReviewService(&fakeDoctrines{doctrine: testDoctrine()}, logs, reviews, gw, StrategyLocal)

	review, err := svc.Generate(context.Background(), 7)
	require.NoError(t, err)

	assert.Zero(t, gw.calls)
	// 3 complied out of 4 relevant events; skipped is neutral.
	assert.InDelta(t, 0.75, review.Review.ComplianceRate, 1e-9)
	assert.Equal(t, 75, review.Review.DoctrineAlignmentScore)
	assert.Equal(t, "Monday", review.Review.StrongestDay)
	assert.Equal(t, "Wednesday", review.Review.WeakestDay)
	assert.Contains(t, review.Review.PatternsDetected, "1 violation event(s) this week")
	assert.Contains(t, review.Review.Directive, "Tighten execution")
}

func TestGenerateLocalStrategyEmptyWeek(t *testing.T) {
	reviews := &fakeReviews{}
	svc := newReviewService(&fakeDoctrines{doctrine: testDoctrine()}, &fakeLogs{}, reviews, &fakeGateway{}, StrategyLocal)

	review, err := svc.Generate(context.Background(), 7)
	require.NoError(t, err)

	// No relevant events counts as full compliance.
	assert.InDelta(t, 1.0, review.Review.ComplianceRate, 1e-9)
	assert.Equal(t, "none", review.Review.StrongestDay)
	assert.Empty(t, review.Review.PatternsDetected)
}

func TestNewReviewServiceNormalizesStrategy(t *testing.T) {
	svc := NewReviewService(&fakeDoctrines{}, &fakeCheckins{}, &fakeDecisions{}, &fakeLogs{}, &fakeReviews{}, &fakeGateway{}, "nonsense")
	assert.Equal(t, StrategyAI, svc.Strategy)

	svc = NewReviewService(&fakeDoctrines{}, &fakeCheckins{}, &fakeDecisions{}, &fakeLogs{}, &fakeReviews{}, &fakeGateway{}, StrategyLocal)
	assert.Equal(t, StrategyLocal, svc.Strategy)
}
