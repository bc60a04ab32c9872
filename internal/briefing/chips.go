package briefing

import "fmt"

const maxChips = 4

// fallbackChips pads the suggestion set when the user's data offers too
// little to derive prompts from.
var fallbackChips = []string{
	"What should I focus on today?",
	"How am I doing on my goals?",
	"Summarize my week",
	"Help me plan tomorrow",
}

// buildSuggestionChips derives up to four unique conversation-starter
// prompts. Daily-brief actions win outright; otherwise stale goals
// yield check-in prompts, fresh goals are consulted only when no stale
// goal produced one, then the top recommendation, then static padding.
func buildSuggestionChips(in Input, b *Briefing) []string {
	var chips []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] || len(chips) >= maxChips {
			return
		}
		seen[s] = true
		chips = append(chips, s)
	}

	if in.DailyBrief != nil && len(in.DailyBrief.Items) > 0 {
		for _, it := range in.DailyBrief.Items {
			add(it.Action)
		}
		return chips
	}

	for _, g := range b.StaleGoals {
		add(fmt.Sprintf("Let's check in on %s", g.Title))
	}
	if len(chips) == 0 {
		for _, g := range b.FreshGoals {
			add(fmt.Sprintf("How is %s going?", g.Title))
		}
	}
	if b.Top != nil && b.Top.Kind == KindRecommendation {
		add(fmt.Sprintf("Tell me more about: %s", b.Top.Title))
	}
	for _, s := range fallbackChips {
		add(s)
	}
	return chips
}
