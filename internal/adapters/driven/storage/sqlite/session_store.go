package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore on a single-row table.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Load returns the stored session; a missing row is the zero session.
func (s *sessionStore) Load(ctx context.Context) (domain.Session, error) {
	var token, email, org sql.NullString
	err := s.store.db.QueryRowContext(ctx,
		"SELECT token, email, organization FROM session WHERE id = 1",
	).Scan(&token, &email, &org)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("loading session: %w", err)
	}
	return domain.Session{Token: token.String, Email: email.String, Organization: org.String}, nil
}

// Save stores the session.
func (s *sessionStore) Save(ctx context.Context, session domain.Session) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO session (id, token, email, organization, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			email = excluded.email,
			organization = excluded.organization,
			updated_at = excluded.updated_at
	`, nullString(session.Token), nullString(session.Email), nullString(session.Organization))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// ClearToken removes the credential and keeps email and organization.
func (s *sessionStore) ClearToken(ctx context.Context) error {
	_, err := s.store.db.ExecContext(ctx,
		"UPDATE session SET token = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = 1")
	if err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}
