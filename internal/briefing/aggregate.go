package briefing

import "sort"

// ItemKind says which home list the top-priority item was taken from.
type ItemKind string

const (
	KindRecommendation ItemKind = "recommendation"
	KindStaleGoal      ItemKind = "stale_goal"
	KindSignal         ItemKind = "signal"
	KindGoal           ItemKind = "goal"
)

// Item is the single top-priority callout shown above the rest of the
// briefing when no daily brief is present.
type Item struct {
	Kind   ItemKind
	Title  string
	Detail string
}

// Briefing is the aggregated, deduplicated view rendered before any
// conversation exists. The item promoted to Top is removed from its
// home list so it never renders twice.
type Briefing struct {
	Top             *Item
	Daily           *DailyBrief
	StaleGoals      []Goal
	FreshGoals      []Goal
	Signals         []Signal
	Recommendations []Recommendation
	Patterns        []Pattern
	Chips           []string
}

// Build aggregates a snapshot into one briefing. It is a pure function
// of its input; degenerate inputs (everything empty, or a single
// non-empty list) run the same logic without special cases.
func Build(in Input) *Briefing {
	b := &Briefing{
		Daily:           in.DailyBrief,
		Signals:         in.Signals,
		Recommendations: in.Recommendations,
		Patterns:        in.Patterns,
	}
	b.StaleGoals, b.FreshGoals = partitionGoals(in.Goals, in.StaleGoals)

	if in.DailyBrief == nil || len(in.DailyBrief.Items) == 0 {
		b.promoteTopPriority()
	}
	b.Chips = buildSuggestionChips(in, b)
	return b
}

// partitionGoals splits goals into stale and fresh by path. Within each
// group, more time since check-in sorts first.
func partitionGoals(goals, stale []Goal) (staleOut, fresh []Goal) {
	stalePaths := make(map[string]bool, len(stale))
	for _, g := range stale {
		stalePaths[g.Path] = true
	}
	for _, g := range goals {
		if stalePaths[g.Path] {
			staleOut = append(staleOut, g)
		} else {
			fresh = append(fresh, g)
		}
	}
	byStaleness := func(gs []Goal) {
		sort.SliceStable(gs, func(i, j int) bool {
			return gs[i].LastCheckIn.Before(gs[j].LastCheckIn)
		})
	}
	byStaleness(staleOut)
	byStaleness(fresh)
	return staleOut, fresh
}

// promoteTopPriority selects at most one item in strict precedence
// order and removes it from its home list.
func (b *Briefing) promoteTopPriority() {
	if r, i, ok := bestRecommendation(b.Recommendations); ok {
		b.Top = &Item{Kind: KindRecommendation, Title: r.Title, Detail: r.Detail}
		b.Recommendations = append(b.Recommendations[:i:i], b.Recommendations[i+1:]...)
		return
	}
	if len(b.StaleGoals) > 0 {
		g := b.StaleGoals[0]
		b.Top = &Item{Kind: KindStaleGoal, Title: g.Title}
		b.StaleGoals = b.StaleGoals[1:]
		return
	}
	if len(b.Signals) > 0 {
		s := b.Signals[0]
		b.Top = &Item{Kind: KindSignal, Title: s.Title, Detail: s.Detail}
		b.Signals = b.Signals[1:]
		return
	}
	if len(b.FreshGoals) > 0 {
		g := b.FreshGoals[0]
		b.Top = &Item{Kind: KindGoal, Title: g.Title}
		b.FreshGoals = b.FreshGoals[1:]
		return
	}
}

func bestRecommendation(recs []Recommendation) (Recommendation, int, bool) {
	if len(recs) == 0 {
		return Recommendation{}, 0, false
	}
	best := 0
	for i, r := range recs {
		if r.Score > recs[best].Score {
			best = i
		}
	}
	return recs[best], best, true
}
