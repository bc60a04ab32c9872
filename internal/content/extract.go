// Package content derives render-time affordances from assistant-authored
// rich text. Detection is heuristic by design: it recognizes the
// documented offer-phrase and heading patterns, it does not parse a
// grammar. The underlying message content is never mutated, only the
// segment list derived from it.
package content

import (
	"regexp"
	"strings"
)

// SegmentKind classifies one piece of the render tree.
type SegmentKind int

const (
	// Prose is inert paragraph text.
	Prose SegmentKind = iota
	// Heading is a section heading line.
	Heading
	// Bullet is a static list item.
	Bullet
	// CTA is an offer sentence lifted out of a paragraph; activating it
	// submits Action as the next user message.
	CTA
	// ActionItem is a list item under an action-oriented heading.
	ActionItem
	// SignalCard is a "**Title** — description" list item rendered as a
	// distinct card rather than a bullet or an affordance.
	SignalCard
)

// Segment is one node of the render tree derived from a message.
type Segment struct {
	Kind   SegmentKind
	Text   string
	Action string // populated for CTA and ActionItem
	Title  string // populated for SignalCard
	Detail string // populated for SignalCard
}

// Offer phrases that open a call-to-action sentence. A match only
// counts at the start of a sentence.
var ctaRe = regexp.MustCompile(`(?i)(?:Want me to|Would you like me to|Shall I|Should I|I can also|I could)\b[^.!?\n]*[.!?]?`)

var (
	headingRe    = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	boldLineRe   = regexp.MustCompile(`^\*\*([^*]+)\*\*:?\s*$`)
	listItemRe   = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)
	signalCardRe = regexp.MustCompile(`^\*\*([^*]+)\*\*\s*[—–-]\s+(.+)$`)
	multiSpaceRe = regexp.MustCompile(`  +`)
	emphasisRe   = regexp.MustCompile("[*_`]")
)

// Action-oriented heading vocabulary. A heading whose normalized text
// contains one of these marks the list below it as actionable.
var actionHeadings = []string{
	"next steps",
	"actions",
	"suggestions",
	"recommendations",
	"to-do",
	"try this",
	"things to try",
}

// Extract parses rendered assistant text into segments. Two passes: a
// pre-scan collecting list items under action headings, then a render
// walk emitting prose, affordances, and signal cards in order.
func Extract(text string) []Segment {
	lines := strings.Split(text, "\n")
	actionSet := collectActionItems(lines)

	var segs []Segment
	var para []string

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		segs = append(segs, extractCTAs(strings.Join(para, " "))...)
		para = nil
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		switch {
		case strings.TrimSpace(line) == "":
			flushPara()
		case isHeading(line):
			flushPara()
			segs = append(segs, Segment{Kind: Heading, Text: headingText(line)})
		case listItemRe.MatchString(line):
			flushPara()
			item := listItemRe.FindStringSubmatch(line)[1]
			if m := signalCardRe.FindStringSubmatch(item); m != nil {
				segs = append(segs, Segment{Kind: SignalCard, Title: m[1], Detail: m[2]})
				continue
			}
			if plain := stripEmphasis(item); actionSet[plain] {
				segs = append(segs, Segment{Kind: ActionItem, Text: plain, Action: plain})
				continue
			}
			segs = append(segs, Segment{Kind: Bullet, Text: item})
		default:
			para = append(para, strings.TrimSpace(line))
		}
	}
	flushPara()
	return segs
}

// collectActionItems pre-scans for list items governed by an
// action-oriented heading, until the list ends at a blank line or the
// next heading. Items are keyed by their emphasis-stripped text.
func collectActionItems(lines []string) map[string]bool {
	set := make(map[string]bool)
	inAction := false
	sawItem := false
	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		switch {
		case isHeading(line):
			inAction = isActionHeading(headingText(line))
			sawItem = false
		case strings.TrimSpace(line) == "":
			// A blank line before the list starts is tolerated; one
			// after it closes the section.
			if sawItem {
				inAction = false
			}
		case listItemRe.MatchString(line):
			if inAction {
				item := listItemRe.FindStringSubmatch(line)[1]
				if signalCardRe.MatchString(item) {
					continue
				}
				set[stripEmphasis(item)] = true
				sawItem = true
			}
		default:
			inAction = false
		}
	}
	return set
}

// extractCTAs lifts offer sentences out of a paragraph. Each match is
// removed from the prose and re-emitted as a CTA segment carrying the
// sentence verbatim; remaining double spaces are collapsed.
func extractCTAs(paragraph string) []Segment {
	matches := ctaRe.FindAllStringIndex(paragraph, -1)
	var ctas []Segment
	var kept []int // spans to cut, flattened

	for _, m := range matches {
		if !sentenceStart(paragraph, m[0]) {
			continue
		}
		ctas = append(ctas, Segment{Kind: CTA, Text: paragraph[m[0]:m[1]], Action: paragraph[m[0]:m[1]]})
		kept = append(kept, m[0], m[1])
	}
	if len(ctas) == 0 {
		return []Segment{{Kind: Prose, Text: paragraph}}
	}

	var sb strings.Builder
	prev := 0
	for i := 0; i < len(kept); i += 2 {
		sb.WriteString(paragraph[prev:kept[i]])
		prev = kept[i+1]
	}
	sb.WriteString(paragraph[prev:])
	remainder := strings.TrimSpace(multiSpaceRe.ReplaceAllString(sb.String(), " "))

	var segs []Segment
	if remainder != "" {
		segs = append(segs, Segment{Kind: Prose, Text: remainder})
	}
	return append(segs, ctas...)
}

// sentenceStart reports whether position i opens a sentence: the
// paragraph start, or preceded by a sentence terminator.
func sentenceStart(s string, i int) bool {
	j := i - 1
	for j >= 0 && (s[j] == ' ' || s[j] == '\t') {
		j--
	}
	if j < 0 {
		return true
	}
	switch s[j] {
	case '.', '!', '?':
		return true
	}
	return false
}

func isHeading(line string) bool {
	return headingRe.MatchString(line) || boldLineRe.MatchString(line)
}

func headingText(line string) string {
	if m := headingRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := boldLineRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return line
}

func isActionHeading(text string) bool {
	t := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(text), ":"))
	for _, v := range actionHeadings {
		if strings.Contains(t, v) {
			return true
		}
	}
	return false
}

func stripEmphasis(s string) string {
	return strings.TrimSpace(emphasisRe.ReplaceAllString(s, ""))
}
