// Package credentials stores the session token issued by the backend.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Provider gets, sets and clears the session credential.
// Token returns a nil token and nil error when no credential is stored.
type Provider interface {
	Token() (*oauth2.Token, error)
	SetToken(tok *oauth2.Token) error
	Clear() error
}

// FromBearer wraps a bearer string issued by /login.
// When the string is a JWT with an exp claim, Expiry is filled from it.
// The signature is not checked; the client only needs to know when to stop
// sending the token.
func FromBearer(raw string) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return tok
	}
	if claims.ExpiresAt != nil {
		tok.Expiry = claims.ExpiresAt.Time
	}
	return tok
}

// FileStore keeps the token as JSON in a single file with mode 0600.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file path.
func (s *FileStore) Path() string { return s.path }

// Token implements Provider.
func (s *FileStore) Token() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, nil
	}
	return &tok, nil
}

// SetToken implements Provider.
func (s *FileStore) SetToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear implements Provider. Clearing a missing token is not an error.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// Memory is an in-process Provider.
type Memory struct {
	mu  sync.Mutex
	tok *oauth2.Token

	cleared int
}

// NewMemory returns a Memory holding tok, which may be nil.
func NewMemory(tok *oauth2.Token) *Memory {
	return &Memory{tok: tok}
}

// Token implements Provider.
func (m *Memory) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil {
		return nil, nil
	}
	tok := *m.tok
	return &tok, nil
}

// SetToken implements Provider.
func (m *Memory) SetToken(tok *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

// Clear implements Provider.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = nil
	m.cleared++
	return nil
}

// ClearCount returns how many times Clear was called.
func (m *Memory) ClearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// Describe summarizes a token for status output.
func Describe(tok *oauth2.Token, now time.Time) string {
	switch {
	case tok == nil:
		return "not logged in"
	case tok.Expiry.IsZero():
		return "logged in"
	case now.After(tok.Expiry):
		return "session expired at " + tok.Expiry.Local().Format(time.RFC3339)
	default:
		return "logged in until " + tok.Expiry.Local().Format(time.RFC3339)
	}
}
