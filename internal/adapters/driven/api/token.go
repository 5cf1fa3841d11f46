package api

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// errNoToken is returned by SessionTokenSource when the user is logged out.
var errNoToken = errors.New("no stored token")

// SessionTokenSource serves the stored credential as a bearer token.
// It reads the store on every call so login and logout take effect
// immediately.
type SessionTokenSource struct {
	store driven.SessionStore
}

// NewSessionTokenSource creates a token source over store.
func NewSessionTokenSource(store driven.SessionStore) *SessionTokenSource {
	return &SessionTokenSource{store: store}
}

// Token implements oauth2.TokenSource.
func (s *SessionTokenSource) Token() (*oauth2.Token, error) {
	session, err := s.store.Load(context.Background())
	if err != nil {
		return nil, err
	}
	if !session.IsAuthenticated() {
		return nil, errNoToken
	}
	return &oauth2.Token{AccessToken: session.Token, TokenType: "Bearer"}, nil
}
