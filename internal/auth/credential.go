package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialStore holds the bearer credential for the advisor API. The
// value comes from configuration when provided, otherwise from a local
// file written during onboarding. It implements api.TokenSource.
type CredentialStore struct {
	mu     sync.Mutex
	path   string
	cached string
}

func NewCredentialStore(path, initial string) (*CredentialStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure credential dir: %w", err)
	}
	c := &CredentialStore{path: path, cached: strings.TrimSpace(initial)}
	if c.cached == "" {
		if b, err := os.ReadFile(path); err == nil {
			c.cached = strings.TrimSpace(string(b))
		}
	}
	return c, nil
}

// Token returns the credential; false while none exists yet.
func (c *CredentialStore) Token() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached, c.cached != ""
}

// Set stores a credential collected during onboarding and persists it
// for the next run.
func (c *CredentialStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty credential")
	}
	c.mu.Lock()
	c.cached = token
	c.mu.Unlock()
	if err := os.WriteFile(c.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}
