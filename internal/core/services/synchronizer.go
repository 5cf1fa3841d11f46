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

// Ensure Synchronizer implements the interfaces.
var (
	_ driving.DocumentSynchronizer = (*Synchronizer)(nil)
	_ driving.SessionListener      = (*Synchronizer)(nil)
)

// DefaultDebounceWindow is the minimum time between two non-forced loads.
const DefaultDebounceWindow = 5 * time.Second

// Synchronizer keeps the item cache consistent with the backend.
type Synchronizer struct {
	api        driven.KnowledgeAPI
	cache      driven.ItemCache
	categories driving.CategoryService
	debounce   time.Duration
	now        func() time.Time

	// mu guards the load state and serialises cache write-back with Reset.
	mu         sync.Mutex
	loading    bool
	lastLoad   time.Time
	generation uint64
}

// SynchronizerOption configures a Synchronizer.
type SynchronizerOption func(*Synchronizer)

// WithDebounce overrides DefaultDebounceWindow.
func WithDebounce(d time.Duration) SynchronizerOption {
	return func(s *Synchronizer) {
		s.debounce = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SynchronizerOption {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// WithCategoryResolver maps loaded rows with unknown categories onto CategoryAll.
func WithCategoryResolver(categories driving.CategoryService) SynchronizerOption {
	return func(s *Synchronizer) {
		s.categories = categories
	}
}

// NewSynchronizer creates a document synchronizer.
func NewSynchronizer(api driven.KnowledgeAPI, cache driven.ItemCache, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		api:      api,
		cache:    cache,
		debounce: DefaultDebounceWindow,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadDocuments refreshes the cache from the backend.
//
// The call is dropped when a load is already in flight, or when force is
// false and the last successful load is younger than the debounce window.
// On success the cache is replaced wholesale; on failure it is preserved and
// the error is surfaced through the cache error slot. lastLoad only moves on
// success, so failures are retried at the debounce cadence.
func (s *Synchronizer) LoadDocuments(ctx context.Context, force bool) (driving.LoadOutcome, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		logger.Debug("load skipped: already in flight")
		return driving.LoadSkippedBusy, nil
	}
	if !force && !s.lastLoad.IsZero() && s.now().Sub(s.lastLoad) < s.debounce {
		s.mu.Unlock()
		logger.Debug("load skipped: debounced")
		return driving.LoadSkippedDebounced, nil
	}
	s.loading = true
	gen := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		// A reset already cleared the flag and may have let a new load start.
		if s.generation == gen {
			s.loading = false
		}
		s.mu.Unlock()
	}()

	logger.Debug("loading documents (force=%t)", force)
	items, err := s.api.ListDocuments(ctx, "")

	if err == nil {
		items = s.normalise(ctx, items)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		logger.Debug("load discarded: session reset while in flight")
		return driving.LoadDiscarded, nil
	}
	if err != nil {
		s.cache.SetError(err.Error())
		logger.Warn("load documents failed: %v", err)
		return driving.LoadFailed, fmt.Errorf("load documents: %w", err)
	}

	s.cache.Replace(items)
	s.cache.SetError("")
	s.lastLoad = s.now()
	logger.Info("loaded %d documents", len(items))
	return driving.LoadApplied, nil
}

// normalise enforces unique IDs and maps unresolvable categories onto CategoryAll.
func (s *Synchronizer) normalise(ctx context.Context, items []domain.KnowledgeItem) []domain.KnowledgeItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.KnowledgeItem, 0, len(items))
	for i := range items {
		item := items[i]
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		if item.Category == "" {
			item.Category = domain.CategoryAll
		} else if s.categories != nil && !s.categories.Known(ctx, item.Category) {
			item.Category = domain.CategoryAll
		}
		out = append(out, item)
	}
	return out
}

// DeleteKnowledgeItem deletes on the backend, then removes the row locally.
// On failure the cache is untouched.
func (s *Synchronizer) DeleteKnowledgeItem(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete document: %w", domain.ErrInvalidInput)
	}

	if err := s.api.DeleteDocument(ctx, id); err != nil {
		s.cache.SetError(err.Error())
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache.Remove(id) {
		logger.Debug("removed document %s from cache", id)
	}
	return nil
}

// Items returns the cached items.
func (s *Synchronizer) Items() []domain.KnowledgeItem {
	return s.cache.Items()
}

// Reset clears the cache and the guard state unconditionally and starts a
// new generation, so that late responses from before the reset are dropped.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.loading = false
	s.lastLoad = time.Time{}
	s.cache.Clear()
	s.cache.SetError("")
}

// OnOrganizationChanged forces a reload that bypasses the debounce window.
func (s *Synchronizer) OnOrganizationChanged(ctx context.Context, organization string) {
	logger.Info("organization changed to %q, reloading documents", organization)
	if _, err := s.LoadDocuments(ctx, true); err != nil {
		logger.Warn("reload after organization change: %v", err)
	}
}

// OnLogout resets the synchronizer.
func (s *Synchronizer) OnLogout() {
	s.Reset()
}
