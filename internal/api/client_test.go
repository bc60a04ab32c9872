package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"northstar/internal/stream"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, StaticToken("tok-1"))
}

func TestAskStream_DecodesEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/advisor/ask/stream" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("missing bearer credential, got %q", got)
		}
		var ask AskRequest
		if err := json.NewDecoder(r.Body).Decode(&ask); err != nil {
			t.Errorf("decode ask: %v", err)
		}
		if ask.Question != "how am I doing?" || ask.AdviceType != "general" {
			t.Errorf("unexpected ask: %+v", ask)
		}
		_, _ = io.WriteString(w, "data: {\"type\":\"tool_start\",\"tool\":\"journal_search\"}\n")
		_, _ = io.WriteString(w, "data: {\"type\":\"tool_done\"}\n")
		_, _ = io.WriteString(w, "data: {\"type\":\"answer\",\"content\":\"fine\",\"conversation_id\":\"c-9\"}\n")
	})

	body, err := c.AskStream(context.Background(), AskRequest{Question: "how am I doing?", AdviceType: "general"})
	if err != nil {
		t.Fatalf("ask stream: %v", err)
	}
	defer func() { _ = body.Close() }()

	events, err := stream.Decode(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 3 || events[2].Type != stream.EventAnswer || events[2].ConversationID != "c-9" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestAskStream_NonSuccessStatusIsRequestError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	if _, err := c.AskStream(context.Background(), AskRequest{Question: "q"}); err == nil {
		t.Fatalf("expected request-level error on non-2xx status")
	}
}

func TestGetConversation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/advisor/conversations/c-9" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Conversation{
			ID: "c-9",
			Messages: []Message{
				{Role: "user", Content: "hi"},
				{Role: "assistant", Content: "hello"},
			},
		})
	})
	conv, err := c.GetConversation(context.Background(), "c-9")
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if conv.ID != "c-9" || len(conv.Messages) != 2 {
		t.Fatalf("unexpected conversation: %+v", conv)
	}
}

func TestOnboardingChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/onboarding/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(OnboardingReply{Message: "noted", Turn: 2, Done: true, GoalsCreated: 3})
	})
	rep, err := c.OnboardingChat(context.Background(), "I want to run more")
	if err != nil {
		t.Fatalf("onboarding chat: %v", err)
	}
	if !rep.Done || rep.GoalsCreated != 3 {
		t.Fatalf("unexpected reply: %+v", rep)
	}
}

func TestQuickJournal_CarriesRequestID(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	})
	if err := c.QuickJournal(context.Background(), "slept well"); err != nil {
		t.Fatalf("quick journal: %v", err)
	}
	if got["text"] != "slept well" || got["request_id"] == "" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestFetchBriefing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/briefing" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"signals":[{"title":"Sleep debt","severity":2}],"goals":[],"stale_goals":[]}`)
	})
	in, err := c.FetchBriefing(context.Background())
	if err != nil {
		t.Fatalf("fetch briefing: %v", err)
	}
	if len(in.Signals) != 1 || !strings.Contains(in.Signals[0].Title, "Sleep") {
		t.Fatalf("unexpected snapshot: %+v", in)
	}
}
