package driving

import (
	"context"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// SessionListener receives session lifecycle signals.
type SessionListener interface {
	// OnOrganizationChanged is called after the active organization changed.
	OnOrganizationChanged(ctx context.Context, organization string)

	// OnLogout is called after the credential was cleared. It marks a
	// generation boundary: in-flight results must be discarded.
	OnLogout()
}

// SessionService manages the persisted client session.
type SessionService interface {
	// Bootstrap loads the stored session, dropping an expired credential.
	Bootstrap(ctx context.Context) (domain.Session, error)

	// Current returns the stored session.
	Current(ctx context.Context) (domain.Session, error)

	// Login stores a credential and account email.
	Login(ctx context.Context, token, email string) error

	// Logout clears the credential and notifies listeners.
	Logout(ctx context.Context) error

	// SwitchOrganization stores the organization and notifies listeners.
	SwitchOrganization(ctx context.Context, organization string) error

	// Subscribe registers a listener.
	Subscribe(listener SessionListener)
}

// CategoryService manages the category set.
type CategoryService interface {
	// List returns all categories.
	List(ctx context.Context) ([]domain.Category, error)

	// Add creates a category from a display name.
	Add(ctx context.Context, name, channelID string) (*domain.Category, error)

	// QueryName converts a category ID into the name sent with queries.
	// CategoryAll and unknown IDs map to the empty string.
	QueryName(ctx context.Context, id string) string

	// Known reports whether id resolves to a stored category or CategoryAll.
	Known(ctx context.Context, id string) bool
}
