package briefing

import "time"

// Signal is a severity-ranked alert derived from the user's data.
type Signal struct {
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
	Severity int    `json:"severity"`
}

// Critique is an optional confidence sub-record attached to a
// recommendation by the reviewing model.
type Critique struct {
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary,omitempty"`
}

// Recommendation is a scored hypothesis about what the user should do.
type Recommendation struct {
	Title    string    `json:"title"`
	Detail   string    `json:"detail,omitempty"`
	Score    float64   `json:"score"`
	Critique *Critique `json:"critique,omitempty"`
}

// Goal is a tracked goal. Path is the stable identity used to match
// stale goals against the full goal list.
type Goal struct {
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	LastCheckIn time.Time `json:"last_check_in"`
}

// Pattern is a detected behavioral observation with a confidence in [0,1].
type Pattern struct {
	Title      string  `json:"title"`
	Detail     string  `json:"detail,omitempty"`
	Confidence float64 `json:"confidence"`
}

// BriefItem is one entry of a time-budgeted daily plan.
type BriefItem struct {
	Kind     string `json:"kind"`
	Priority int    `json:"priority"`
	Title    string `json:"title"`
	Action   string `json:"action"`
	Minutes  int    `json:"minutes"`
}

// DailyBrief is an ordered, time-budgeted subset of the briefing. When
// present it supersedes ad-hoc top-priority selection.
type DailyBrief struct {
	BudgetMinutes int         `json:"budget_minutes"`
	Items         []BriefItem `json:"items"`
}

// Input is the read-only snapshot the aggregator works from, fetched
// once per advisor surface mount. StaleGoals is a subset of Goals by
// path equality; callers pre-sort it by staleness.
type Input struct {
	Signals         []Signal         `json:"signals"`
	Recommendations []Recommendation `json:"recommendations"`
	Goals           []Goal           `json:"goals"`
	StaleGoals      []Goal           `json:"stale_goals"`
	Patterns        []Pattern        `json:"patterns"`
	DailyBrief      *DailyBrief      `json:"daily_brief,omitempty"`
}
