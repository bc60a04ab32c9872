package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"northstar/internal/briefing"
)

// TokenSource supplies the bearer credential for outbound requests. The
// second return is false while no usable credential exists yet.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken adapts a fixed string into a TokenSource.
type StaticToken string

func (t StaticToken) Token() (string, bool) { return string(t), t != "" }

// Client talks to the remote advisor/data service. All methods except
// AskStream buffer the full response; AskStream hands the streamed body
// back to the caller for event decoding.
type Client struct {
	baseURL string
	tokens  TokenSource
	httpc   *http.Client
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		// No overall timeout: streamed exchanges are long-lived by design.
		httpc: &http.Client{},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do issues a buffered JSON request and decodes the response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// AskStream starts one advisor exchange and returns the streamed
// response body. A non-2xx status is a request-level error: no byte of
// the stream is ever decoded in that case. The caller owns the body and
// must close it.
func (c *Client) AskStream(ctx context.Context, ask AskRequest) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/advisor/ask/stream", ask)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ask stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("ask stream: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// GetConversation fetches the full message history for a conversation id.
func (c *Client) GetConversation(ctx context.Context, id string) (Conversation, error) {
	var conv Conversation
	err := c.do(ctx, http.MethodGet, "/advisor/conversations/"+id, nil, &conv)
	return conv, err
}

// FetchBriefing loads the briefing snapshot, once per surface mount.
func (c *Client) FetchBriefing(ctx context.Context) (briefing.Input, error) {
	var in briefing.Input
	err := c.do(ctx, http.MethodGet, "/briefing", nil, &in)
	return in, err
}

// StartOnboarding begins the onboarding interview.
func (c *Client) StartOnboarding(ctx context.Context) (OnboardingReply, error) {
	var rep OnboardingReply
	err := c.do(ctx, http.MethodPost, "/onboarding/start", struct{}{}, &rep)
	return rep, err
}

// OnboardingChat sends one interview turn.
func (c *Client) OnboardingChat(ctx context.Context, message string) (OnboardingReply, error) {
	var rep OnboardingReply
	body := map[string]string{"message": message}
	err := c.do(ctx, http.MethodPost, "/onboarding/chat", body, &rep)
	return rep, err
}

// QuickJournal is a fire-and-forget capture. Callers ignore the error;
// it is returned only for logging.
func (c *Client) QuickJournal(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	body := map[string]string{"text": text, "request_id": uuid.NewString()}
	return c.do(ctx, http.MethodPost, "/journal/quick", body, nil)
}

// Engagement posts interaction telemetry, best-effort.
func (c *Client) Engagement(ctx context.Context, kind, target string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ev := EngagementEvent{RequestID: uuid.NewString(), Kind: kind, Target: target}
	return c.do(ctx, http.MethodPost, "/engagement", ev, nil)
}
