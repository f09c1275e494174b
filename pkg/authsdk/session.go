package authsdk

import (
	"sync"
)

// Session is an authenticated session backed by a bearer token. Session
// tokens are not refreshable; log in again once the token expires.
type Session struct {
	client *SDKClient

	mu    sync.RWMutex
	token string
	role  string
}

// Token returns the bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Role returns the account role reported at login.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// SetToken swaps the bearer token, for callers that log in again.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
