package model

import "time"

// WeeklyReviewAnalysis is the validated AI payload of a weekly review.
type WeeklyReviewAnalysis struct {
	WeekSummary            string   `json:"week_summary"`
	ComplianceRate         float64  `json:"compliance_rate"`
	PatternsDetected       []string `json:"patterns_detected"`
	StrongestDay           string   `json:"strongest_day"`
	WeakestDay             string   `json:"weakest_day"`
	OverrideAnalysis       string   `json:"override_analysis"`
	Directive              string   `json:"directive"`
	DoctrineAlignmentScore int      `json:"doctrine_alignment_score"`
}

// WeeklyReview stores one generated review per (user, week_start).
// Regenerating a review inside the same week overwrites the stored
// payload; the storage-level unique key prevents duplicates.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the review.
//  WeekStart – Monday of the reviewed week (UTC, date only).
//  WeekEnd   – last day covered by the review (UTC, date only).
//  Review    – weekly_reviews.ai_review_json, validated payload.
//  CreatedAt – timestamp of first generation.
//  UpdatedAt – timestamp of last regeneration.
type WeeklyReview struct {
	ID        uint64               `json:"id"`
	UserID    uint64               `json:"user_id"`
	WeekStart time.Time            `json:"week_start"`
	WeekEnd   time.Time            `json:"week_end"`
	Review    WeeklyReviewAnalysis `json:"ai_review"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}
