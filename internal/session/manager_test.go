package session

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"northstar/internal/api"
)

type fakeFetcher struct {
	conv  api.Conversation
	err   error
	calls int
}

func (f *fakeFetcher) GetConversation(ctx context.Context, id string) (api.Conversation, error) {
	f.calls++
	return f.conv, f.err
}

func TestRestore_FetchesHistoryForPersistedID(t *testing.T) {
	slot := &MemorySlot{}
	_ = slot.Write("c-1")
	f := &fakeFetcher{conv: api.Conversation{
		ID:       "c-1",
		Messages: []api.Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
	}}
	m := NewManager(f, slot)
	m.Restore(context.Background())

	if m.ConversationID() != "c-1" {
		t.Fatalf("expected restored id, got %q", m.ConversationID())
	}
	if len(m.Messages()) != 2 {
		t.Fatalf("expected restored history, got %+v", m.Messages())
	}
}

func TestRestore_FailureClearsSlotSilently(t *testing.T) {
	slot := &MemorySlot{}
	_ = slot.Write("c-dead")
	m := NewManager(&fakeFetcher{err: errors.New("unknown conversation")}, slot)
	m.Restore(context.Background())

	if m.ConversationID() != "" || len(m.Messages()) != 0 {
		t.Fatalf("expected empty session after failed restore")
	}
	if id, _ := slot.Read(); id != "" {
		t.Fatalf("expected slot cleared, got %q", id)
	}
}

func TestRestore_Idempotent(t *testing.T) {
	slot := &MemorySlot{}
	_ = slot.Write("c-1")
	f := &fakeFetcher{conv: api.Conversation{
		ID:       "c-1",
		Messages: []api.Message{{Role: "user", Content: "hi"}},
	}}
	m := NewManager(f, slot)
	m.Restore(context.Background())
	first := m.Messages()
	m.Restore(context.Background())
	second := m.Messages()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("restore not idempotent: %+v vs %+v", first, second)
	}
}

func TestRestore_NoPersistedIDIsNoop(t *testing.T) {
	f := &fakeFetcher{}
	m := NewManager(f, &MemorySlot{})
	m.Restore(context.Background())
	if f.calls != 0 {
		t.Fatalf("no fetch expected without a persisted id")
	}
}

func TestAdopt_PersistsAndAssociatesRetroactively(t *testing.T) {
	slot := &MemorySlot{}
	m := NewManager(&fakeFetcher{}, slot)
	m.Append(api.Message{Role: "user", Content: "first question"})
	m.Adopt("c-7")

	if m.ConversationID() != "c-7" {
		t.Fatalf("adopt did not set id")
	}
	if id, _ := slot.Read(); id != "c-7" {
		t.Fatalf("adopt did not persist id, slot=%q", id)
	}
	if len(m.Messages()) != 1 {
		t.Fatalf("prior log lost on adopt: %+v", m.Messages())
	}
}

func TestAdopt_EmptyIDIgnored(t *testing.T) {
	slot := &MemorySlot{}
	m := NewManager(&fakeFetcher{}, slot)
	m.Adopt("")
	if id, _ := slot.Read(); id != "" {
		t.Fatalf("empty adopt must not touch the slot")
	}
}

func TestReset_ClearsLogAndSlot(t *testing.T) {
	slot := &MemorySlot{}
	m := NewManager(&fakeFetcher{}, slot)
	m.Append(api.Message{Role: "user", Content: "hi"})
	m.Adopt("c-3")
	m.Reset()

	if m.ConversationID() != "" || len(m.Messages()) != 0 {
		t.Fatalf("reset did not clear session")
	}
	if id, _ := slot.Read(); id != "" {
		t.Fatalf("reset did not clear slot")
	}
}

func TestFileSlot_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "conversation.txt")
	s, err := NewFileSlot(p)
	if err != nil {
		t.Fatalf("init slot: %v", err)
	}
	if id, err := s.Read(); err != nil || id != "" {
		t.Fatalf("fresh slot should read empty, got %q err=%v", id, err)
	}
	if err := s.Write("c-42"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if id, _ := s.Read(); id != "c-42" {
		t.Fatalf("read after write: %q", id)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if id, _ := s.Read(); id != "" {
		t.Fatalf("read after clear: %q", id)
	}
	// Clearing an already-empty slot must not fail.
	if err := s.Clear(); err != nil {
		t.Fatalf("double clear: %v", err)
	}
}
