package auth

import (
	"path/filepath"
	"testing"
)

func TestService_IsAllowed(t *testing.T) {
	s := NewService([]int64{42})
	if !s.IsAllowed(42) {
		t.Fatalf("listed user should be allowed")
	}
	if s.IsAllowed(7) {
		t.Fatalf("unlisted user should be rejected")
	}
}

func TestCredentialStore_EnvValueWins(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token.txt")
	c, err := NewCredentialStore(p, "tok-env")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	tok, ok := c.Token()
	if !ok || tok != "tok-env" {
		t.Fatalf("expected configured token, got %q ok=%v", tok, ok)
	}
}

func TestCredentialStore_SetPersistsAcrossRestart(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token.txt")
	c, err := NewCredentialStore(p, "")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, ok := c.Token(); ok {
		t.Fatalf("fresh store should have no token")
	}
	if err := c.Set("  tok-user  "); err != nil {
		t.Fatalf("set: %v", err)
	}
	if tok, ok := c.Token(); !ok || tok != "tok-user" {
		t.Fatalf("token not cached: %q", tok)
	}

	// A new store over the same path picks the credential back up.
	c2, err := NewCredentialStore(p, "")
	if err != nil {
		t.Fatalf("reinit: %v", err)
	}
	if tok, ok := c2.Token(); !ok || tok != "tok-user" {
		t.Fatalf("token not persisted: %q", tok)
	}
}

func TestCredentialStore_RejectsEmpty(t *testing.T) {
	c, err := NewCredentialStore(filepath.Join(t.TempDir(), "token.txt"), "")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := c.Set("   "); err == nil {
		t.Fatalf("empty credential must be rejected")
	}
}
