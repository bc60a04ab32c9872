package advisor

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"northstar/internal/api"
	"northstar/internal/session"
	"northstar/internal/stream"
)

// Streamer is the slice of the API client the orchestrator needs.
type Streamer interface {
	AskStream(ctx context.Context, ask api.AskRequest) (io.ReadCloser, error)
}

// Outcome is the result of one exchange.
type Outcome struct {
	Message api.Message
	// Failed marks transport failures and application error events;
	// both get the same user-visible treatment.
	Failed bool
	// Discarded marks a terminal event that lost a race against Reset
	// and produced no visible message.
	Discarded bool
}

const errorPreamble = "I hit a problem answering that: "

// Orchestrator sequences advisor exchanges for one surface: idle while
// no exchange is in flight, sending while one is. Submitting during
// sending is a no-op, so at most one exchange runs at a time.
type Orchestrator struct {
	client     Streamer
	session    *session.Manager
	adviceType string

	mu      sync.Mutex
	sending bool
	gen     int // bumped by Reset to detect races with in-flight exchanges
}

func New(client Streamer, sess *session.Manager, adviceType string) *Orchestrator {
	return &Orchestrator{client: client, session: sess, adviceType: adviceType}
}

// Session exposes the owned session manager for rendering.
func (o *Orchestrator) Session() *session.Manager { return o.session }

// Sending reports whether an exchange is in flight.
func (o *Orchestrator) Sending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sending
}

// Reset discards the conversation: in-memory log and persisted id. A
// terminal event still in flight for the old conversation will be
// discarded when it lands.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.gen++
	o.mu.Unlock()
	o.session.Reset()
}

// Submit runs one exchange to its terminal event. The user message is
// appended optimistically before the request is issued. status receives
// advisory tool labels while the service works; an empty label clears
// the display. The second return is false when the submit was ignored
// (empty text, or an exchange already in flight).
func (o *Orchestrator) Submit(ctx context.Context, text string, status func(label string)) (Outcome, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, false
	}
	o.mu.Lock()
	if o.sending {
		o.mu.Unlock()
		return Outcome{}, false
	}
	o.sending = true
	gen := o.gen
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.sending = false
		o.mu.Unlock()
	}()
	if status == nil {
		status = func(string) {}
	}
	defer status("")

	o.session.Append(api.Message{Role: "user", Content: text})

	body, err := o.client.AskStream(ctx, api.AskRequest{
		Question:       text,
		AdviceType:     o.adviceType,
		ConversationID: o.session.ConversationID(),
	})
	if err != nil {
		log.Printf("ask stream request failed: %v", err)
		return o.fail(err.Error()), true
	}
	defer func() {
		_ = body.Close()
	}()

	dec := stream.NewDecoder(body)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			// Transport closed without a terminal event.
			return o.fail("the connection closed before an answer arrived"), true
		}
		if err != nil {
			log.Printf("stream read failed: %v", err)
			return o.fail(err.Error()), true
		}
		switch ev.Type {
		case stream.EventToolStart:
			status(toolLabel(ev.Tool))
		case stream.EventToolDone:
			status("")
		case stream.EventAnswer:
			return o.accept(gen, ev), true
		case stream.EventError:
			return o.fail(ev.Detail), true
		}
	}
}

// accept lands a terminal answer. An answer racing a Reset is discarded
// in favor of the user's explicit action; an answer carrying a
// different id than an already-adopted one is a protocol violation and
// does not replace the id.
func (o *Orchestrator) accept(gen int, ev stream.Event) Outcome {
	o.mu.Lock()
	stale := o.gen != gen
	o.mu.Unlock()
	cur := o.session.ConversationID()
	if stale && (cur == "" || ev.ConversationID != cur) {
		log.Printf("discarding answer for conversation %q after reset", ev.ConversationID)
		return Outcome{Discarded: true}
	}

	msg := api.Message{Role: "assistant", Content: ev.Content}
	o.session.Append(msg)

	if cur != "" && ev.ConversationID != "" && ev.ConversationID != cur {
		log.Printf("⚠️ answer carried conversation id %q while %q is adopted; keeping the adopted id", ev.ConversationID, cur)
	} else {
		o.session.Adopt(ev.ConversationID)
	}
	return Outcome{Message: msg}
}

// fail appends a synthetic assistant message so the conversation stays
// usable, and flags the outcome for a transient notification. The
// conversation id is never updated from a failed exchange.
func (o *Orchestrator) fail(detail string) Outcome {
	if detail == "" {
		detail = "something went wrong"
	}
	msg := api.Message{Role: "assistant", Content: errorPreamble + detail}
	o.session.Append(msg)
	return Outcome{Message: msg, Failed: true}
}

// toolLabel maps a capability name to the advisory label shown while
// the service works. Unknown tools fall back to the raw name.
func toolLabel(tool string) string {
	switch tool {
	case "journal_search":
		return "Searching your journal…"
	case "goal_lookup":
		return "Reviewing your goals…"
	case "pattern_scan":
		return "Looking for patterns…"
	case "daily_brief":
		return "Checking today's plan…"
	case "":
		return "Working…"
	}
	return fmt.Sprintf("Running %s…", tool)
}
