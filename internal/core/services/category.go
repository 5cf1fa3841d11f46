package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
)

// Ensure CategoryService implements the interface.
var _ driving.CategoryService = (*CategoryService)(nil)

// CategoryService manages the category set.
type CategoryService struct {
	store driven.CategoryStore
	now   func() time.Time
}

// NewCategoryService creates a category service.
func NewCategoryService(store driven.CategoryStore) *CategoryService {
	return &CategoryService{store: store, now: time.Now}
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.store.List(ctx)
}

// Add creates a category. The ID is derived from the name.
func (s *CategoryService) Add(ctx context.Context, name, channelID string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	id := domain.CategoryID(name)
	if id == "" || id == domain.CategoryAll {
		return nil, fmt.Errorf("add category %q: %w", name, domain.ErrInvalidInput)
	}

	category := domain.Category{
		ID:        id,
		Name:      name,
		ChannelID: channelID,
		CreatedAt: s.now(),
	}
	if err := s.store.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("add category %q: %w", name, err)
	}
	return &category, nil
}

// QueryName converts an internal ID to the display name sent with queries.
func (s *CategoryService) QueryName(ctx context.Context, id string) string {
	if id == "" || id == domain.CategoryAll {
		return ""
	}
	category, err := s.store.Get(ctx, id)
	if err != nil {
		return ""
	}
	return category.Name
}

// Known reports whether id is CategoryAll or a stored category.
func (s *CategoryService) Known(ctx context.Context, id string) bool {
	if id == domain.CategoryAll || id == domain.CategoryDocuments {
		return true
	}
	_, err := s.store.Get(ctx, id)
	return err == nil || !errors.Is(err, domain.ErrNotFound)
}
