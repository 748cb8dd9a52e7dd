package teller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Session holds the credentials proving an authenticated identity to the
// ledger service. Token is never empty for a stored session.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Store persists the session as a small JSON file on disk, so the credential
// survives across invocations. There is exactly one owner of the session
// lifecycle: login saves it, logout or a rejected credential clears it.
// Concurrent processes each read their own view; the store is not locked.
type Store struct {
	path string
}

// DefaultSessionPath returns the conventional location of the session file,
// under the user's configuration directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate user config dir: %w", err)
	}
	return filepath.Join(dir, "tlr", "session.json"), nil
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store { return &Store{path: path} }

// Save persists the session, overwriting any prior one. The file is written
// with 0600 permissions: it holds a live credential.
func (s *Store) Save(session Session) error {
	if session.Token == "" {
		return fmt.Errorf("refusing to store a session with an empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("cannot create session dir: %w", err)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("cannot encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("cannot write session file %q: %w", s.path, err)
	}
	return nil
}

// Load returns the stored session, or ErrNoSession when none exists.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("cannot read session file %q: %w", s.path, err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("cannot decode session file %q: %w", s.path, err)
	}
	if session.Token == "" {
		// a corrupt or hand-edited file without a token is no session at all
		return Session{}, ErrNoSession
	}
	return session, nil
}

// Clear removes the stored session. Clearing an absent session is not an
// error, so logout is idempotent.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot remove session file %q: %w", s.path, err)
	}
	return nil
}

// Guard gates entry to protected commands. It is checked once per command
// invocation, before any protected request is issued.
type Guard struct {
	store *Store
}

func NewGuard(store *Store) *Guard { return &Guard{store: store} }

// Ensure returns the stored session, or ErrNoSession when the user must be
// sent back through login. Callers abort on error without touching the
// network.
func (g *Guard) Ensure() (Session, error) {
	return g.store.Load()
}
