// Package identity supplies the authenticated user the uploader acts for.
//
// The uploader never reads identity from globals: a Source is handed to the
// upload controller at construction time. Absence of an identity (nobody
// logged in yet) is a normal state, reported by Current returning false.
package identity

import "sync"

// Identity is the authenticated user.
type Identity struct {
	Username string
}

// Source reports the current identity, if any.
type Source interface {
	Current() (*Identity, bool)
}

// Session is a Source that also carries the bearer token issued at login.
// It is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
	id    *Identity
}

// NewSession returns an empty (logged out) session.
func NewSession() *Session {
	return &Session{}
}

// Set stores the token and the identity it belongs to.
func (s *Session) Set(token string, id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.id = &id
}

// SetToken derives the identity from token's claims and stores both.
func (s *Session) SetToken(token string) error {
	id, err := FromToken(token)
	if err != nil {
		return err
	}
	s.Set(token, *id)
	return nil
}

// Clear logs the session out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.id = nil
}

// Current returns a copy of the identity, or false when logged out.
func (s *Session) Current() (*Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.id == nil || s.id.Username == "" {
		return nil, false
	}
	id := *s.id
	return &id, true
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
