package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Slot is the client-local durable cell holding the last-known
// conversation id. An empty read means "no conversation yet". The value
// is opaque to everything but the session manager.
type Slot interface {
	Read() (string, error)
	Write(id string) error
	Clear() error
}

// FileSlot persists the id as a plain string in a single file.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

func NewFileSlot(path string) (*FileSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure slot dir: %w", err)
	}
	return &FileSlot{path: path}, nil
}

func (s *FileSlot) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read slot: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *FileSlot) Write(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, []byte(id+"\n"), 0o644); err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}

func (s *FileSlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}

// MemorySlot is the in-memory fake used in tests.
type MemorySlot struct {
	mu sync.Mutex
	id string
}

func (s *MemorySlot) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemorySlot) Write(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemorySlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}
