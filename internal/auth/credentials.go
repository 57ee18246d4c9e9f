// Package auth holds the single opaque API key that authenticates every
// backend request. The key lives in memory and in one file slot under the
// data directory; presence of a non-empty key is the sole authentication
// signal. There is no expiry, refresh or server-side session object.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

const credentialFile = "credentials.toml"

type credentialSlot struct {
	APIKey string `toml:"api_key"`
}

// Store is the credential store. Safe for concurrent use: the stream reader
// goroutine reads the token while the UI goroutine may clear it.
type Store struct {
	mu    sync.Mutex
	path  string
	token string
}

// NewStore creates a store persisting to dataDir. Nothing is read from disk
// until Load is called.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, credentialFile)}
}

// Load reads the persisted slot once at startup. A missing file is not an
// error; it just leaves the store unauthenticated. No validation of the key's
// shape is performed at this layer.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			s.token = ""
			return nil
		}
		return fmt.Errorf("stat credentials file: %w", err)
	}

	var slot credentialSlot
	if _, err := toml.DecodeFile(s.path, &slot); err != nil {
		return fmt.Errorf("parse credentials file: %w", err)
	}
	s.token = slot.APIKey
	return nil
}

// Set stores the key in memory and writes the persisted slot with owner-only
// permissions.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create credentials file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(credentialSlot{APIKey: token}); err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	s.token = token
	return nil
}

// Clear removes the persisted slot and forgets the in-memory key.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}

// Token returns the current key, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a non-empty key is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Masked returns the key with its middle elided for display, in the form
// sk_org_abc...wxyz. Short keys are fully masked.
func (s *Store) Masked() string {
	token := s.Token()
	if token == "" {
		return "not set"
	}
	if len(token) <= 14 {
		return "****"
	}
	return token[:10] + "..." + token[len(token)-4:]
}
