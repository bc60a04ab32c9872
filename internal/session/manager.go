package session

import (
	"context"
	"log"
	"sync"

	"northstar/internal/api"
)

// historyFetcher is the slice of the API client the manager needs.
type historyFetcher interface {
	GetConversation(ctx context.Context, id string) (api.Conversation, error)
}

// Manager owns conversation identity and the append-only message log
// for one advisor surface. The persisted id, once set, is only replaced
// by a newer id from Adopt or cleared by Reset / a failed Restore.
type Manager struct {
	fetch historyFetcher
	slot  Slot

	mu       sync.Mutex
	convID   string
	messages []api.Message
}

func NewManager(fetch historyFetcher, slot Slot) *Manager {
	return &Manager{fetch: fetch, slot: slot}
}

// Restore reads the persisted conversation id and, if present, fetches
// its history from the service. Any failure (expired or unknown id)
// clears the slot and starts empty: silent recovery, never a
// user-visible error.
func (m *Manager) Restore(ctx context.Context) {
	id, err := m.slot.Read()
	if err != nil || id == "" || m.fetch == nil {
		return
	}
	conv, err := m.fetch.GetConversation(ctx, id)
	if err != nil {
		log.Printf("conversation %s not restorable, starting fresh: %v", id, err)
		_ = m.slot.Clear()
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convID = conv.ID
	m.messages = append([]api.Message(nil), conv.Messages...)
}

// Append adds a message to the in-memory log. Nothing ever removes
// entries short of Reset.
func (m *Manager) Append(msg api.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Adopt records the conversation id supplied by a terminal answer
// event. When no id was known, the whole prior log becomes
// retroactively associated with it. The id is persisted.
func (m *Manager) Adopt(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	m.convID = id
	m.mu.Unlock()
	if err := m.slot.Write(id); err != nil {
		log.Printf("failed to persist conversation id: %v", err)
	}
}

// Reset clears the in-memory log and the persisted id. Server-side
// history is untouched.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.convID = ""
	m.messages = nil
	m.mu.Unlock()
	if err := m.slot.Clear(); err != nil {
		log.Printf("failed to clear conversation slot: %v", err)
	}
}

// ConversationID returns the current id, empty before the first answer.
func (m *Manager) ConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.convID
}

// Messages returns a copy of the ordered log.
func (m *Manager) Messages() []api.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.Message, len(m.messages))
	copy(out, m.messages)
	return out
}
