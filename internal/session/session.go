// Package session holds the opaque bearer token that authenticates calls to the backend.
//
// A Store is passed explicitly to everything that needs the token. The server binds a
// cookie-backed Store to each request; the CLI uses a file-backed Store that plays the
// part of browser local storage.
package session

import (
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Store is a single token slot.
type Store interface {
	// Token returns the current token and whether one is present.
	Token() (string, bool)
	Save(token string) error
	Clear() error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save("")
}

// HasToken is shorthand for a presence check.
func HasToken(s Store) bool {
	if s == nil {
		return false
	}
	_, ok := s.Token()
	return ok
}

// Subject returns the "sub" (or "email") claim of a JWT token without verifying it.
// It is for log lines only; the backend is the authority on the token.
func Subject(token string) string {
	if strings.Count(token, ".") != 2 {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	if email, ok := claims["email"].(string); ok {
		return email
	}
	return ""
}
