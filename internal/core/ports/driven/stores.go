package driven

import (
	"context"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// ItemCache is the client-side view of ingested knowledge items.
// The document synchronizer and the upload pipeline are its only writers.
type ItemCache interface {
	// Items returns a snapshot of the cache in insertion order.
	Items() []domain.KnowledgeItem

	// Replace swaps the entire cache for items.
	Replace(items []domain.KnowledgeItem)

	// Append adds one item, replacing any item with the same ID.
	Append(item domain.KnowledgeItem)

	// Epoch increases every time the cache is cleared.
	Epoch() uint64

	// AppendIf appends item only while the cache is still at epoch and
	// reports whether it did.
	AppendIf(item domain.KnowledgeItem, epoch uint64) bool

	// Remove deletes the item with id and reports whether it existed.
	Remove(id string) bool

	// Clear empties the cache.
	Clear()

	// SetError sets the shared user-visible error; empty clears it.
	SetError(msg string)

	// Error returns the shared user-visible error.
	Error() string
}

// UploadState tracks the upload pipeline's processing flag and progress.
type UploadState interface {
	// SetUploadProgress records progress in [0, 1].
	SetUploadProgress(processing bool, progress float64)

	// AddWarning records a non-fatal warning.
	AddWarning(msg string)
}

// MessageStore holds the conversation. Mutations are keyed by message ID and
// AI message mutations apply only while the message is streaming.
type MessageStore interface {
	// Append assigns the next monotonic ID and stores msg.
	Append(msg domain.ChatMessage) domain.ChatMessage

	// Get returns the message with id.
	Get(id int64) (domain.ChatMessage, bool)

	// Messages returns the conversation in creation order.
	Messages() []domain.ChatMessage

	// AppendContent appends chunk to a streaming message.
	AppendContent(id int64, chunk string) bool

	// SetContent replaces the content of a streaming message.
	SetContent(id int64, content string) bool

	// Finish attaches sources and clears the streaming flag.
	Finish(id int64, sources []domain.Source) bool

	// Delete removes a message.
	Delete(id int64) bool

	// Clear removes every message.
	Clear()

	// SetError sets the shared user-visible error; empty clears it.
	SetError(msg string)

	// Error returns the shared user-visible error.
	Error() string
}

// SessionStore persists the client session durably.
type SessionStore interface {
	// Load returns the stored session; a missing session is the zero value.
	Load(ctx context.Context) (domain.Session, error)

	// Save stores the session.
	Save(ctx context.Context, session domain.Session) error

	// ClearToken removes the credential, keeping email and organization.
	ClearToken(ctx context.Context) error
}

// CategoryStore persists the category set. Categories are never deleted.
type CategoryStore interface {
	// Save stores a category; returns domain.ErrAlreadyExists for a duplicate ID.
	Save(ctx context.Context, category domain.Category) error

	// Get returns a category by ID or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Category, error)

	// List returns all categories ordered by creation.
	List(ctx context.Context) ([]domain.Category, error)
}
