package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Ensure CategoryStore implements the interface.
var _ driven.CategoryStore = (*CategoryStore)(nil)

// CategoryStore is an in-memory implementation of driven.CategoryStore.
type CategoryStore struct {
	mu         sync.RWMutex
	categories []domain.Category
}

// NewCategoryStore creates a category store seeded with categories.
func NewCategoryStore(categories ...domain.Category) *CategoryStore {
	return &CategoryStore{categories: append([]domain.Category(nil), categories...)}
}

// Save stores a category.
func (s *CategoryStore) Save(_ context.Context, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == category.ID {
			return domain.ErrAlreadyExists
		}
	}
	s.categories = append(s.categories, category)
	return nil
}

// Get returns a category by ID.
func (s *CategoryStore) Get(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			c := s.categories[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns all categories in insertion order.
func (s *CategoryStore) List(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...), nil
}
