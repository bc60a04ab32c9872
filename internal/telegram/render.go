package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"northstar/internal/briefing"
	"northstar/internal/content"
)

// renderBriefing builds the briefing message and its keyboard. The
// returned actions slice mirrors the keyboard's chip buttons: callback
// data carries indexes, not text, to stay inside Telegram's 64-byte
// callback limit.
func renderBriefing(b *briefing.Briefing, done *briefing.DoneSet) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("☀️ *Your briefing*\n")

	if b.Top != nil {
		sb.WriteString("\n⭐ *Top priority*: ")
		sb.WriteString(b.Top.Title)
		if b.Top.Detail != "" {
			sb.WriteString(" — ")
			sb.WriteString(b.Top.Detail)
		}
		sb.WriteString("\n")
	}

	if b.Daily != nil && len(b.Daily.Items) > 0 {
		sb.WriteString(fmt.Sprintf("\n📋 *Today's plan* (%d min", b.Daily.BudgetMinutes))
		if n := done.Remaining(b.Daily); n < len(b.Daily.Items) {
			sb.WriteString(fmt.Sprintf(", %d left", n))
		}
		sb.WriteString(")\n")
		for _, it := range b.Daily.Items {
			mark := "▫️"
			if done.Done(briefing.Key(it)) {
				mark = "✅"
			}
			sb.WriteString(fmt.Sprintf("%s %s (%d min)\n", mark, it.Title, it.Minutes))
		}
	}

	if len(b.StaleGoals) > 0 {
		sb.WriteString("\n🕸 *Needs a check-in*\n")
		for _, g := range b.StaleGoals {
			sb.WriteString("• " + g.Title + "\n")
		}
	}
	if len(b.FreshGoals) > 0 {
		sb.WriteString("\n🎯 *Goals*\n")
		for _, g := range b.FreshGoals {
			sb.WriteString("• " + g.Title + "\n")
		}
	}
	if len(b.Signals) > 0 {
		sb.WriteString("\n🔔 *Signals*\n")
		for _, s := range b.Signals {
			sb.WriteString("• " + s.Title + "\n")
		}
	}
	if len(b.Recommendations) > 0 {
		sb.WriteString("\n💡 *Recommendations*\n")
		for _, r := range b.Recommendations {
			sb.WriteString("• " + r.Title + "\n")
		}
	}
	if len(b.Patterns) > 0 {
		sb.WriteString("\n🧭 *Patterns*\n")
		for _, p := range b.Patterns {
			sb.WriteString(fmt.Sprintf("• %s (%.0f%%)\n", p.Title, p.Confidence*100))
		}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if b.Daily != nil {
		for i, it := range b.Daily.Items {
			label := "▫️ " + it.Title
			if done.Done(briefing.Key(it)) {
				label = "✅ " + it.Title
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("done:%d", i)),
			))
		}
	}
	for i, chip := range b.Chips {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 "+chip, fmt.Sprintf("chip:%d", i)),
		))
	}
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// renderAnswer turns extracted segments into message text plus an
// affordance keyboard. Returned actions align with the keyboard's
// "act:<i>" callback data.
func renderAnswer(segs []content.Segment) (string, []string, [][]tgbotapi.InlineKeyboardButton) {
	var sb strings.Builder
	var actions []string
	var rows [][]tgbotapi.InlineKeyboardButton

	addAffordance := func(label, action string) {
		idx := len(actions)
		actions = append(actions, action)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("act:%d", idx)),
		))
	}

	for _, s := range segs {
		switch s.Kind {
		case content.Prose:
			sb.WriteString(s.Text + "\n\n")
		case content.Heading:
			sb.WriteString("*" + s.Text + "*\n")
		case content.Bullet:
			sb.WriteString("• " + s.Text + "\n")
		case content.SignalCard:
			sb.WriteString(fmt.Sprintf("🔔 *%s* — %s\n", s.Title, s.Detail))
		case content.CTA:
			addAffordance("✨ "+trimButton(s.Text), s.Action)
		case content.ActionItem:
			sb.WriteString("• " + s.Text + "\n")
			addAffordance("▶️ "+trimButton(s.Text), s.Action)
		}
	}
	return strings.TrimSpace(sb.String()), actions, rows
}

// trimButton keeps button labels inside Telegram's practical limit.
func trimButton(s string) string {
	const max = 48
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
