package domain

import "time"

// Match is an externally computed suggestion to meet another attendee.
type Match struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	MatchUserID    string    `json:"match_user_id"`
	EventID        string    `json:"event_id"`
	WhyMeet        string    `json:"why_meet"`
	ThingsInCommon string    `json:"things_in_common"`
	DiveDeeper     string    `json:"dive_deeper"`
	CreatedAt      time.Time `json:"created_at"`
}

// MatchDetail is a match together with the matched attendee's profile.
type MatchDetail struct {
	Match
	Profile *Profile `json:"profile"`
}

// ComputedMatch is one entry of the matching service's response.
type ComputedMatch struct {
	MatchUserID    string  `json:"match_user_id"`
	Similarity     float64 `json:"similarity"`
	WhyMeet        string  `json:"why_meet,omitempty"`
	ThingsInCommon string  `json:"things_in_common,omitempty"`
	DiveDeeper     string  `json:"dive_deeper,omitempty"`
}

// RecomputeResult summarizes an event-wide match recomputation.
type RecomputeResult struct {
	EventID   string `json:"event_id"`
	Attendees int    `json:"attendees"`
	Matches   int    `json:"matches"`
	Failures  int    `json:"failures"`
}

// Dashboard is the landing view for a signed-in attendee.
type Dashboard struct {
	Profile            *Profile     `json:"profile"`
	ActiveEvents       []Event      `json:"active_events"`
	CurrentEvent       *Event       `json:"current_event,omitempty"`
	Matches            []Match      `json:"matches"`
	PendingConnections []Connection `json:"pending_connections"`
}
