package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionTTL = 12 * time.Hour

// sessionStore keeps issued login tokens in memory. Sessions do not
// survive a restart, which is acceptable for a single-operator tool.
type sessionStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		tokens: map[string]time.Time{},
	}
}

func (s *sessionStore) Issue() string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = time.Now().Add(sessionTTL)

	return token
}

func (s *sessionStore) Valid(token string) bool {
	s.mu.RLock()
	expiry, found := s.tokens[token]
	s.mu.RUnlock()

	if !found {
		return false
	}

	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()

		return false
	}

	return true
}
