package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// FilterByCategory keeps items in category. CategoryAll and the empty string
// pass everything; CategoryDocuments also matches pdf and doc items.
func FilterByCategory(items []domain.KnowledgeItem, category string) []domain.KnowledgeItem {
	if category == "" || category == domain.CategoryAll {
		return clone(items)
	}
	out := make([]domain.KnowledgeItem, 0, len(items))
	for i := range items {
		if matchesCategory(&items[i], category) {
			out = append(out, items[i])
		}
	}
	return out
}

func matchesCategory(item *domain.KnowledgeItem, category string) bool {
	if item.Category == category {
		return true
	}
	return category == domain.CategoryDocuments && item.Type.IsDocumentLike()
}

// Search keeps items whose title or content contains text, case-insensitively.
func Search(items []domain.KnowledgeItem, text string) []domain.KnowledgeItem {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return clone(items)
	}
	out := make([]domain.KnowledgeItem, 0, len(items))
	for i := range items {
		if strings.Contains(strings.ToLower(items[i].Title), text) ||
			strings.Contains(strings.ToLower(items[i].Content), text) {
			out = append(out, items[i])
		}
	}
	return out
}

// Sort returns a sorted copy of items. Ties keep their input order.
func Sort(items []domain.KnowledgeItem, order domain.SortOrder) []domain.KnowledgeItem {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(&out[i], &out[j], order)
	})
	return out
}

// Less is the library comparator.
func Less(a, b *domain.KnowledgeItem, order domain.SortOrder) bool {
	switch order {
	case domain.SortOldest:
		return a.CreatedAt.Before(b.CreatedAt)
	case domain.SortAZ:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case domain.SortZA:
		return strings.ToLower(a.Title) > strings.ToLower(b.Title)
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

// View applies category filter, search and sort in that order.
func View(items []domain.KnowledgeItem, opts domain.ViewOptions) []domain.KnowledgeItem {
	return Sort(Search(FilterByCategory(items, opts.Category), opts.Search), opts.Order)
}

func clone(items []domain.KnowledgeItem) []domain.KnowledgeItem {
	out := make([]domain.KnowledgeItem, len(items))
	copy(out, items)
	return out
}
