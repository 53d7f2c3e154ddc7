package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Tokens is the credential pair a session client holds.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

var ErrNoTokens = errors.New("session: no stored tokens")

// CredentialStore persists the current token pair between requests.
type CredentialStore interface {
	Tokens() (Tokens, error)
	SetTokens(Tokens) error
	Clear() error
}

// MemoryStore keeps the pair in memory, suitable for short-lived clients
// and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
	set    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Tokens() (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Tokens{}, ErrNoTokens
	}
	return s.tokens, nil
}

func (s *MemoryStore) SetTokens(t Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
	s.set = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	s.set = false
	return nil
}

// FileStore persists the pair as JSON so a CLI session survives process
// restarts. Writes go through a temp file rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Tokens() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tokens{}, ErrNoTokens
		}
		return Tokens{}, err
	}

	var t Tokens
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tokens{}, err
	}
	if t.AccessToken == "" && t.RefreshToken == "" {
		return Tokens{}, ErrNoTokens
	}
	return t, nil
}

func (s *FileStore) SetTokens(t Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
