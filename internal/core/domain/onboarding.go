package domain

import "time"

// OnboardingStatus names the step of the onboarding funnel a user resumes at.
type OnboardingStatus string

const (
	StatusNoProfile         OnboardingStatus = "no_profile"
	StatusError             OnboardingStatus = "error"
	StatusIncompleteProfile OnboardingStatus = "incomplete_profile"
	StatusNoEventAnswers    OnboardingStatus = "no_event_answers"
	StatusComplete          OnboardingStatus = "complete"
)

// Client-side navigation targets.
const (
	RouteQuestions = "/questions"
	RouteWhyJoin   = "/why-join"
	RouteEnd       = "/end"
	RouteHome      = "/home"
	RouteDashboard = "/dashboard"
)

// OnboardingResult is the outcome of a single resolution.
type OnboardingResult struct {
	Status        OnboardingStatus `json:"status"`
	RedirectTo    string           `json:"redirect_to"`
	MissingFields []string         `json:"missing_fields,omitempty"`
}

// Resolution is an OnboardingResult tagged with the generation that produced it.
// Only the latest generation for a user may drive navigation.
type Resolution struct {
	OnboardingResult
	Generation uint64 `json:"generation"`
}

// EventAnswer holds a user's answers to the two onboarding survey questions
// for one event.
type EventAnswer struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Question1 string    `json:"question1"`
	Question2 string    `json:"question2"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitAnswersRequest carries the survey form: selected options plus an
// optional free-text answer per question.
type SubmitAnswersRequest struct {
	Question1      []string `json:"question1" binding:"omitempty,max=10,dive,max=200"`
	Question1Other string   `json:"question1_other" binding:"max=500"`
	Question2      []string `json:"question2" binding:"omitempty,max=10,dive,max=200"`
	Question2Other string   `json:"question2_other" binding:"max=500"`
}
