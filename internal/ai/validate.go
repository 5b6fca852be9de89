package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iliyamo/discipline-tracker/internal/model"
)

// Validation is exact-match on the key set: a missing key or an extra
// key fails regardless of everything else.  All violations are
// collected and reported in a single error; callers never receive a
// partially valid payload.

var decisionKeys = []string{"verdict", "confidence", "reasoning", "risks", "better_option", "next_steps"}

var reviewKeys = []string{
	"week_summary", "compliance_rate", "patterns_detected", "strongest_day",
	"weakest_day", "override_analysis", "directive", "doctrine_alignment_score",
}

// ValidateDecisionPayload parses raw model output and enforces the
// decision verdict schema.  reasoning must hold 2 to 6 entries and
// better_option is empty exactly when the verdict is approve.
func ValidateDecisionPayload(content string) (*model.DecisionVerdict, error) {
	payload, err := decodeObject(content)
	if err != nil {
		return nil, err
	}
	if err := requireExactKeys(payload, decisionKeys, "expected schema keys"); err != nil {
		return nil, err
	}

	var violations []string

	verdict, ok := stringValue(payload["verdict"])
	if !ok || (verdict != "approve" && verdict != "reject" && verdict != "delay") {
		violations = append(violations, "verdict")
	}
	confidence, ok := intValue(payload["confidence"])
	if !ok || confidence < 0 || confidence > 100 {
		violations = append(violations, "confidence")
	}
	reasoning, ok := stringSlice(payload["reasoning"])
	if !ok || len(reasoning) < 2 || len(reasoning) > 6 {
		violations = append(violations, "reasoning")
	}
	risks, ok := stringSlice(payload["risks"])
	if !ok {
		violations = append(violations, "risks")
	}
	betterOption, ok := stringValue(payload["better_option"])
	if !ok {
		violations = append(violations, "better_option")
	}
	nextSteps, ok := stringSlice(payload["next_steps"])
	if !ok || len(nextSteps) < 1 {
		violations = append(violations, "next_steps")
	}

	// better_option is bidirectionally tied to the verdict: empty iff
	// approve.  Only checked when both fields are individually valid.
	if !contains(violations, "verdict") && !contains(violations, "better_option") {
		if verdict == "approve" && betterOption != "" {
			violations = append(violations, "better_option")
		}
		if verdict != "approve" && strings.TrimSpace(betterOption) == "" {
			violations = append(violations, "better_option")
		}
	}

	if len(violations) > 0 {
		return nil, &InvalidResponseError{
			Message: "AI response did not match the expected schema",
			Fields:  violations,
		}
	}

	return &model.DecisionVerdict{
		Verdict:      verdict,
		Confidence:   confidence,
		Reasoning:    reasoning,
		Risks:        risks,
		BetterOption: betterOption,
		NextSteps:    nextSteps,
	}, nil
}

// ValidateReviewPayload parses raw model output and enforces the
// weekly review schema.
func ValidateReviewPayload(content string) (*model.WeeklyReviewAnalysis, error) {
	payload, err := decodeObject(content)
	if err != nil {
		return nil, err
	}
	if err := requireExactKeys(payload, reviewKeys, "expected weekly review keys"); err != nil {
		return nil, err
	}

	var violations []string

	summary, ok := stringValue(payload["week_summary"])
	if !ok || summary == "" {
		violations = append(violations, "week_summary")
	}
	rate, ok := floatValue(payload["compliance_rate"])
	if !ok || rate < 0 || rate > 1 {
		violations = append(violations, "compliance_rate")
	}
	patterns, ok := stringSlice(payload["patterns_detected"])
	if !ok {
		violations = append(violations, "patterns_detected")
	}
	strongest, ok := stringValue(payload["strongest_day"])
	if !ok || strongest == "" {
		violations = append(violations, "strongest_day")
	}
	weakest, ok := stringValue(payload["weakest_day"])
	if !ok || weakest == "" {
		violations = append(violations, "weakest_day")
	}
	overrideAnalysis, ok := stringValue(payload["override_analysis"])
	if !ok || overrideAnalysis == "" {
		violations = append(violations, "override_analysis")
	}
	directive, ok := stringValue(payload["directive"])
	if !ok || directive == "" {
		violations = append(violations, "directive")
	}
	score, ok := intValue(payload["doctrine_alignment_score"])
	if !ok || score < 0 || score > 100 {
		violations = append(violations, "doctrine_alignment_score")
	}

	if len(violations) > 0 {
		return nil, &InvalidResponseError{
			Message: "AI response did not match the expected weekly review schema",
			Fields:  violations,
		}
	}

	return &model.WeeklyReviewAnalysis{
		WeekSummary:            summary,
		ComplianceRate:         rate,
		PatternsDetected:       patterns,
		StrongestDay:           strongest,
		WeakestDay:             weakest,
		OverrideAnalysis:       overrideAnalysis,
		Directive:              directive,
		DoctrineAlignmentScore: score,
	}, nil
}

// decodeObject trims the content, strips one enclosing fenced code
// block when present (models occasionally add markdown despite the
// prompt) and parses the result as a JSON object.
func decodeObject(content string) (map[string]any, error) {
	normalized := stripCodeFence(strings.TrimSpace(content))

	var payload map[string]any
	if err := json.Unmarshal([]byte(normalized), &payload); err != nil || payload == nil {
		return nil, &InvalidResponseError{Message: "AI response is not valid JSON"}
	}
	return payload, nil
}

// stripCodeFence removes a single ```...``` wrapper.  Anything more
// elaborate is left untouched and will fail JSON parsing.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	rest := s[3:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:] // drop the opening fence line, incl. any language tag
	} else {
		return s
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}

// requireExactKeys compares the sorted actual key set against the
// sorted expected set.  Missing and unexpected keys are both fatal.
func requireExactKeys(payload map[string]any, expected []string, label string) error {
	actual := make([]string, 0, len(payload))
	for k := range payload {
		actual = append(actual, k)
	}
	sort.Strings(actual)

	want := append([]string(nil), expected...)
	sort.Strings(want)

	if len(actual) == len(want) {
		match := true
		for i := range want {
			if actual[i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return &InvalidResponseError{
		Message: fmt.Sprintf("AI response must contain exactly the %s", label),
		Fields:  keyDiff(actual, want),
	}
}

// keyDiff lists keys present in exactly one of the two sorted sets.
func keyDiff(actual, expected []string) []string {
	seen := map[string]int{}
	for _, k := range actual {
		seen[k]++
	}
	for _, k := range expected {
		seen[k]--
	}
	var diff []string
	for k, n := range seen {
		if n != 0 {
			diff = append(diff, k)
		}
	}
	sort.Strings(diff)
	return diff
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// intValue accepts JSON numbers that are mathematically integers.
func intValue(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || math.Trunc(f) != f {
		return 0, false
	}
	return int(f), true
}

func floatValue(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// stringSlice accepts an array whose entries are all non-empty strings.
func stringSlice(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
