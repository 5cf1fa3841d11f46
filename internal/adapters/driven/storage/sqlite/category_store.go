package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// categoryStore implements driven.CategoryStore.
type categoryStore struct {
	store *Store
}

var _ driven.CategoryStore = (*categoryStore)(nil)

// Save inserts a category. Categories are never updated.
func (s *categoryStore) Save(ctx context.Context, category domain.Category) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, channel_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, category.ID, category.Name, nullString(category.ChannelID), category.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("saving category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Get retrieves a category by ID.
func (s *categoryStore) Get(ctx context.Context, id string) (*domain.Category, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, name, channel_id, created_at FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// List returns categories ordered by creation time.
func (s *categoryStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, name, channel_id, created_at FROM categories ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category //nolint:prealloc // size unknown from query
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

func scanCategory(row scanner) (*domain.Category, error) {
	var c domain.Category
	var channel, created sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &channel, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning category: %w", err)
	}
	c.ChannelID = channel.String
	c.CreatedAt = parseNullableTime(created)
	return &c, nil
}
