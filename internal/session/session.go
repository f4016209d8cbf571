// Package session persists the bearer token between runs. It is the
// terminal-client equivalent of the browser's single localStorage "token"
// entry: one small file, absence means anonymous.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store holds the current bearer token in memory and mirrors it to disk.
// All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewStore loads any previously saved token from path.
func NewStore(path string) *Store {
	s := &Store{path: path}
	if data, err := os.ReadFile(path); err == nil {
		s.token = strings.TrimSpace(string(data))
	}
	return s
}

// Token returns the current bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Save stores the token in memory and on disk (0600, owner-only).
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Clear forgets the token; a missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExpiresAt reads the exp claim of the stored token without verifying the
// signature (the client has no key; the server remains the authority).
// Returns the zero time if there is no token or no exp claim.
func (s *Store) ExpiresAt() time.Time {
	token := s.Token()
	if token == "" {
		return time.Time{}
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Valid reports whether a token is present and not past its exp claim.
// Tokens without a readable exp claim are assumed valid; the server will
// reject them with a 401 if they are not.
func (s *Store) Valid() bool {
	if s.Token() == "" {
		return false
	}
	exp := s.ExpiresAt()
	return exp.IsZero() || time.Now().Before(exp)
}
