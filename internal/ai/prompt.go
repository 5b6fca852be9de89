package ai

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/iliyamo/discipline-tracker/internal/model"
)

// Prompt construction is deliberately free of randomness: the same
// inputs always produce byte-identical system/user messages, so tests
// can assert exact content for fixtures.

const decisionSystemMessage = "You are a stoic disciplined decision coach. " +
	"Use doctrine-first reasoning and objective analysis only. " +
	"Return ONLY raw JSON, no markdown, no backticks."

const reviewSystemMessage = "You are a stoic disciplined weekly review engine. " +
	"Use only doctrine-aligned, objective analysis grounded in provided weekly data. " +
	"Return ONLY raw JSON, no markdown, no backticks."

const decisionSchemaText = `{
    "verdict": "approve | reject | delay",
    "confidence": "integer 0-100",
    "reasoning": ["string", "..."],
    "risks": ["string", "..."],
    "better_option": "string",
    "next_steps": ["string", "..."]
}`

const reviewSchemaText = `{
    "week_summary": "string",
    "compliance_rate": "number between 0.0 and 1.0",
    "patterns_detected": ["string", "..."],
    "strongest_day": "string",
    "weakest_day": "string",
    "override_analysis": "string",
    "directive": "string",
    "doctrine_alignment_score": "integer 0-100"
}`

// doctrinePayload is the doctrine as embedded in prompt payloads.
type doctrinePayload struct {
	Goals         []model.Goal         `json:"goals"`
	Rules         []string             `json:"rules"`
	Habits        []model.Habit        `json:"habits"`
	WeeklyTargets []model.WeeklyTarget `json:"weekly_targets"`
}

func doctrineToPayload(d *model.Doctrine) doctrinePayload {
	return doctrinePayload{
		Goals:         d.Goals,
		Rules:         d.Rules,
		Habits:        d.Habits,
		WeeklyTargets: d.WeeklyTargets,
	}
}

// BuildDecisionPrompt returns the (system, user) message pair for a
// decision evaluation.  The user message embeds the required output
// schema literally and the full input payload as indented JSON.
func BuildDecisionPrompt(
	doctrine *model.Doctrine,
	checkin *model.DailyCheckin,
	category string,
	decisionCtx model.DecisionContext,
) (string, string, error) {
	payload := struct {
		Doctrine     doctrinePayload `json:"doctrine"`
		TodayCheckin struct {
			Energy   int      `json:"energy"`
			Mood     int      `json:"mood"`
			Missions []string `json:"missions"`
			Notes    *string  `json:"notes"`
		} `json:"today_checkin"`
		Decision struct {
			Category string                `json:"category"`
			Context  model.DecisionContext `json:"context"`
		} `json:"decision"`
	}{Doctrine: doctrineToPayload(doctrine)}
	payload.TodayCheckin.Energy = checkin.Energy
	payload.TodayCheckin.Mood = checkin.Mood
	payload.TodayCheckin.Missions = checkin.Missions
	payload.TodayCheckin.Notes = checkin.Notes
	payload.Decision.Category = category
	payload.Decision.Context = decisionCtx

	encoded, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return "", "", err
	}

	userMessage := strings.Join([]string{
		"Evaluate the decision against doctrine and today state.",
		"Required output JSON schema (exact keys, no extras):",
		decisionSchemaText,
		"Rules:",
		"- verdict must be one of approve, reject, delay",
		"- confidence must be integer between 0 and 100",
		"- reasoning must be array of 2 to 6 strings",
		"- risks must be array of strings (can be empty)",
		"- better_option must be a string (empty string allowed only if verdict is approve)",
		"- next_steps must be an array of actionable strings",
		"Input payload:",
		string(encoded),
	}, "\n")

	return decisionSystemMessage, userMessage, nil
}

// reviewCheckin, reviewDecision and reviewLog shape the weekly records
// exactly as the review prompt embeds them.
type reviewCheckin struct {
	CheckinDate string   `json:"checkin_date"`
	Energy      int      `json:"energy"`
	Mood        int      `json:"mood"`
	Missions    []string `json:"missions"`
	Notes       *string  `json:"notes"`
	CreatedAt   string   `json:"created_at"`
}

type reviewDecision struct {
	Category     string                 `json:"category"`
	Context      model.DecisionContext  `json:"context"`
	AIResponse   *model.DecisionVerdict `json:"ai_response"`
	FinalChoice  *string                `json:"final_choice"`
	OutcomeNotes *string                `json:"outcome_notes"`
	CreatedAt    string                 `json:"created_at"`
}

type reviewLog struct {
	DecisionID *uint64 `json:"decision_id"`
	LogType    string  `json:"log_type"`
	Reason     *string `json:"reason"`
	CreatedAt  string  `json:"created_at"`
}

// BuildWeeklyReviewPrompt returns the (system, user) message pair for
// a weekly review over the given window and records.  Records must
// already be in chronological order.
func BuildWeeklyReviewPrompt(
	doctrine *model.Doctrine,
	checkins []model.DailyCheckin,
	decisions []model.Decision,
	logs []model.DisciplineLog,
	weekStart, weekEnd time.Time,
) (string, string, error) {
	payload := struct {
		WeekRange struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"week_range"`
		Doctrine       doctrinePayload  `json:"doctrine"`
		DailyCheckins  []reviewCheckin  `json:"daily_checkins"`
		Decisions      []reviewDecision `json:"decisions"`
		DisciplineLogs []reviewLog      `json:"discipline_logs"`
	}{
		Doctrine:       doctrineToPayload(doctrine),
		DailyCheckins:  make([]reviewCheckin, 0, len(checkins)),
		Decisions:      make([]reviewDecision, 0, len(decisions)),
		DisciplineLogs: make([]reviewLog, 0, len(logs)),
	}
	payload.WeekRange.Start = weekStart.UTC().Format(time.RFC3339)
	payload.WeekRange.End = weekEnd.UTC().Format(time.RFC3339)

	for _, c := range checkins {
		payload.DailyCheckins = append(payload.DailyCheckins, reviewCheckin{
			CheckinDate: c.CheckinDate.UTC().Format("2006-01-02"),
			Energy:      c.Energy,
			Mood:        c.Mood,
			Missions:    c.Missions,
			Notes:       c.Notes,
			CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, d := range decisions {
		payload.Decisions = append(payload.Decisions, reviewDecision{
			Category:     d.Category,
			Context:      d.Context,
			AIResponse:   d.AIResponse,
			FinalChoice:  d.FinalChoice,
			OutcomeNotes: d.OutcomeNotes,
			CreatedAt:    d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, l := range logs {
		payload.DisciplineLogs = append(payload.DisciplineLogs, reviewLog{
			DecisionID: l.DecisionID,
			LogType:    l.LogType,
			Reason:     l.Reason,
			CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	encoded, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return "", "", err
	}

	userMessage := strings.Join([]string{
		"Generate a weekly review from the provided range and records.",
		"Required output JSON schema (exact keys and types, no extras):",
		reviewSchemaText,
		"Validation constraints:",
		"- week_summary: string",
		"- compliance_rate: number between 0.0 and 1.0",
		"- patterns_detected: array of strings",
		"- strongest_day: string",
		"- weakest_day: string",
		"- override_analysis: string",
		"- directive: string",
		"- doctrine_alignment_score: integer between 0 and 100",
		"Input payload:",
		string(encoded),
	}, "\n")

	return reviewSystemMessage, userMessage, nil
}
