package mcp

import (
	"context"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
)

// mockQueryController is a mock implementation of driving.QueryController.
type mockQueryController struct {
	reply    *domain.ChatMessage
	err      error
	query    string
	category string
}

func (m *mockQueryController) Submit(_ context.Context, query, categoryID string) (*domain.ChatMessage, error) {
	m.query = query
	m.category = categoryID
	return m.reply, m.err
}

func (m *mockQueryController) Messages() []domain.ChatMessage { return nil }

func (m *mockQueryController) DeleteMessage(_ int64) bool { return false }

func (m *mockQueryController) ClearConversation() {}

func (m *mockQueryController) TransportName() string { return "stream" }

// mockSynchronizer is a mock implementation of driving.DocumentSynchronizer.
type mockSynchronizer struct {
	items     []domain.KnowledgeItem
	loadErr   error
	deleteErr error
	loads     int
	deleted   []string
}

func (m *mockSynchronizer) LoadDocuments(_ context.Context, _ bool) (driving.LoadOutcome, error) {
	m.loads++
	if m.loadErr != nil {
		return driving.LoadFailed, m.loadErr
	}
	return driving.LoadApplied, nil
}

func (m *mockSynchronizer) DeleteKnowledgeItem(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSynchronizer) Items() []domain.KnowledgeItem { return m.items }

func (m *mockSynchronizer) Reset() {}

// mockCategoryService is a mock implementation of driving.CategoryService.
type mockCategoryService struct {
	categories []domain.Category
	err        error
}

func (m *mockCategoryService) List(_ context.Context) ([]domain.Category, error) {
	return m.categories, m.err
}

func (m *mockCategoryService) Add(_ context.Context, _, _ string) (*domain.Category, error) {
	return nil, m.err
}

func (m *mockCategoryService) QueryName(_ context.Context, _ string) string { return "" }

func (m *mockCategoryService) Known(_ context.Context, _ string) bool { return true }
