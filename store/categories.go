package store

import (
	"context"

	"github.com/satheeshds/invoicer/models"
)

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Deleted, &c.CreatedAt)
	return c, err
}

// ListCategories returns the live categories by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, deleted, created_at FROM categories
		WHERE deleted = false ORDER BY name, id`)
	if err != nil {
		return nil, &QueryError{Op: "list categories", Err: err}
	}
	categories, err := collect(rows, scanCategory)
	if err != nil {
		return nil, &QueryError{Op: "list categories", Err: err}
	}
	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	if msg := in.Validate(); msg != "" {
		return models.Category{}, invalid("", msg)
	}
	c, err := scanCategory(s.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, deleted, created_at`, in.Name))
	if err != nil {
		return models.Category{}, &WriteError{Op: "insert category", Err: err}
	}
	return c, nil
}
