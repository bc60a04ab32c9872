package stream

// EventType discriminates the events the advisor service emits while
// composing an answer.
type EventType string

const (
	EventToolStart EventType = "tool_start"
	EventToolDone  EventType = "tool_done"
	EventAnswer    EventType = "answer"
	EventError     EventType = "error"
)

// Event is one frame of a streamed advisor exchange. Exactly one terminal
// event (answer or error) ends an exchange; any number of tool_start /
// tool_done frames may precede it.
type Event struct {
	Type           EventType `json:"type"`
	Tool           string    `json:"tool,omitempty"`
	Content        string    `json:"content,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Detail         string    `json:"detail,omitempty"`
}

// Terminal reports whether the event ends the exchange.
func (e Event) Terminal() bool {
	return e.Type == EventAnswer || e.Type == EventError
}
