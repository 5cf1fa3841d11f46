package driving

import (
	"context"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// LoadOutcome describes what a LoadDocuments call did.
type LoadOutcome int

// Load outcomes.
const (
	// LoadApplied means the cache was replaced with the server rows.
	LoadApplied LoadOutcome = iota

	// LoadSkippedBusy means another load was in flight; no request was made.
	LoadSkippedBusy

	// LoadSkippedDebounced means a non-forced call arrived inside the debounce window.
	LoadSkippedDebounced

	// LoadDiscarded means the response arrived after a session reset and was dropped.
	LoadDiscarded

	// LoadFailed means the request failed; the cache was preserved.
	LoadFailed
)

// String returns a short label for logs and CLI output.
func (o LoadOutcome) String() string {
	switch o {
	case LoadApplied:
		return "applied"
	case LoadSkippedBusy:
		return "skipped (in flight)"
	case LoadSkippedDebounced:
		return "skipped (debounced)"
	case LoadDiscarded:
		return "discarded"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Skipped reports whether no request was made.
func (o LoadOutcome) Skipped() bool {
	return o == LoadSkippedBusy || o == LoadSkippedDebounced
}

// DocumentSynchronizer keeps the item cache consistent with the backend.
type DocumentSynchronizer interface {
	// LoadDocuments refreshes the cache. At most one load is in flight and
	// non-forced loads are debounced. Skipped calls return a nil error.
	LoadDocuments(ctx context.Context, force bool) (LoadOutcome, error)

	// DeleteKnowledgeItem deletes on the backend and, on success only,
	// removes the item from the cache.
	DeleteKnowledgeItem(ctx context.Context, id string) error

	// Items returns the cached items.
	Items() []domain.KnowledgeItem

	// Reset discards the cache and the in-flight/debounce state.
	Reset()
}
