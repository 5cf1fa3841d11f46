package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu      sync.RWMutex
	session domain.Session
}

// NewSessionStore creates a session store holding session.
func NewSessionStore(session domain.Session) *SessionStore {
	return &SessionStore{session: session}
}

// Load returns the stored session.
func (s *SessionStore) Load(_ context.Context) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, nil
}

// Save stores the session.
func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

// ClearToken removes the credential.
func (s *SessionStore) ClearToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Token = ""
	return nil
}
