package api

// Message is one entry of a conversation log. Roles are "user" and
// "assistant"; role alternation is not enforced, consecutive same-role
// messages are legal (e.g. after a failed exchange).
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the server-side history for a conversation id,
// fetched when a session is restored.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// AskRequest starts one advisor exchange. ConversationID is empty for
// the first exchange of a conversation; the server assigns an id with
// the terminal answer event.
type AskRequest struct {
	Question       string `json:"question"`
	AdviceType     string `json:"advice_type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// OnboardingReply is the server's turn in the onboarding interview.
type OnboardingReply struct {
	Message      string `json:"message"`
	Done         bool   `json:"done"`
	Turn         int    `json:"turn"`
	GoalsCreated int    `json:"goals_created,omitempty"`
}

// EngagementEvent is best-effort interaction telemetry. Failures to
// deliver it are swallowed.
type EngagementEvent struct {
	RequestID string `json:"request_id"`
	Kind      string `json:"kind"`
	Target    string `json:"target,omitempty"`
}
