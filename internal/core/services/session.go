package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages the persisted session and fans lifecycle signals
// out to registered listeners.
type SessionService struct {
	store     driven.SessionStore
	inspector driven.TokenInspector
	now       func() time.Time

	mu        sync.RWMutex
	listeners []driving.SessionListener
}

// NewSessionService creates a session service. inspector is optional.
func NewSessionService(store driven.SessionStore, inspector driven.TokenInspector) *SessionService {
	return &SessionService{
		store:     store,
		inspector: inspector,
		now:       time.Now,
	}
}

// Subscribe registers a listener.
func (s *SessionService) Subscribe(listener driving.SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *SessionService) snapshot() []driving.SessionListener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]driving.SessionListener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

// Bootstrap loads the stored session. An expired or unreadable credential is
// cleared and the session is returned as logged out.
func (s *SessionService) Bootstrap(ctx context.Context) (domain.Session, error) {
	session, err := s.store.Load(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !session.IsAuthenticated() || s.inspector == nil {
		return session, nil
	}

	claims, err := s.inspector.Inspect(session.Token)
	if err != nil {
		logger.Warn("stored credential unreadable, ignoring it: %v", err)
		return s.dropToken(ctx, session)
	}
	if claims.ExpiresAt > 0 && !s.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		logger.Info("stored credential expired")
		return s.dropToken(ctx, session)
	}
	if session.Email == "" && claims.Email != "" {
		session.Email = claims.Email
		if err := s.store.Save(ctx, session); err != nil {
			return session, fmt.Errorf("save session: %w", err)
		}
	}
	return session, nil
}

func (s *SessionService) dropToken(ctx context.Context, session domain.Session) (domain.Session, error) {
	if err := s.store.ClearToken(ctx); err != nil {
		return session, fmt.Errorf("clear token: %w", err)
	}
	session.Token = ""
	return session, nil
}

// Current returns the stored session.
func (s *SessionService) Current(ctx context.Context) (domain.Session, error) {
	return s.store.Load(ctx)
}

// Login stores a credential and account email.
func (s *SessionService) Login(ctx context.Context, token, email string) error {
	if token == "" {
		return fmt.Errorf("login: empty token: %w", domain.ErrInvalidInput)
	}
	session, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	session.Token = token
	if email != "" {
		session.Email = email
	}
	return s.store.Save(ctx, session)
}

// Logout clears the credential and notifies every listener. The account
// email is kept as the last-used email.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.store.ClearToken(ctx)
	for _, l := range s.snapshot() {
		l.OnLogout()
	}
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// SwitchOrganization stores the organization and, if it changed, notifies
// listeners so they can force a reload.
func (s *SessionService) SwitchOrganization(ctx context.Context, organization string) error {
	session, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session.Organization == organization {
		return nil
	}
	session.Organization = organization
	if err := s.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	for _, l := range s.snapshot() {
		l.OnOrganizationChanged(ctx, organization)
	}
	return nil
}

// HandleAuthRequired is the gateway's 401 hook: a forced logout.
func (s *SessionService) HandleAuthRequired() {
	logger.Warn("backend rejected the credential, logging out")
	if err := s.Logout(context.Background()); err != nil {
		logger.Error("logout after 401: %v", err)
	}
}
