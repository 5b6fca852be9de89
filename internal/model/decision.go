package model

import "time"

// Categories lists the fixed decision categories accepted by the API.
var Categories = []string{"financial", "health", "work", "social", "mindset", "other"}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// DecisionContext is the structured situation a user submits for
// evaluation.  Urgency is one of low, medium, high.
type DecisionContext struct {
	What            string   `json:"what"`
	Why             string   `json:"why"`
	When            string   `json:"when"`
	Urgency         string   `json:"urgency"`
	EstimatedImpact string   `json:"estimated_impact"`
	Alternatives    []string `json:"alternatives,omitempty"`
}

// DecisionVerdict is the validated AI judgment attached to a decision.
// better_option is empty exactly when the verdict is approve.
type DecisionVerdict struct {
	Verdict      string   `json:"verdict"`
	Confidence   int      `json:"confidence"`
	Reasoning    []string `json:"reasoning"`
	Risks        []string `json:"risks"`
	BetterOption string   `json:"better_option"`
	NextSteps    []string `json:"next_steps"`
}

// Decision records a submitted decision together with the AI verdict
// produced at creation time.  FinalChoice and OutcomeNotes are filled
// in later by the user via the outcome update.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner of the decision.
//  Category      – one of Categories.
//  Context       – decisions.context_json.
//  AIResponse    – decisions.ai_response_json, validated verdict (nullable).
//  RawAIResponse – full upstream response body kept for diagnostics (nullable).
//  FinalChoice   – what the user actually did (nullable).
//  OutcomeNotes  – how it turned out (nullable).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Decision struct {
	ID            uint64           `json:"id"`
	UserID        uint64           `json:"user_id"`
	Category      string           `json:"category"`
	Context       DecisionContext  `json:"context"`
	AIResponse    *DecisionVerdict `json:"ai_response"`
	RawAIResponse *string          `json:"raw_ai_response,omitempty"`
	FinalChoice   *string          `json:"final_choice"`
	OutcomeNotes  *string          `json:"outcome_notes"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
