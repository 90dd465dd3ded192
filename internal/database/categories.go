package database

import (
	"context"

	"github.com/google/uuid"
)

const listCategories = `
SELECT id, name, color, created_at
FROM categories
ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createCategory = `
INSERT INTO categories (name, color)
VALUES ($1, $2)
RETURNING id, name, color, created_at
`

type CreateCategoryParams struct {
	Name  string
	Color string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, createCategory, arg.Name, arg.Color).
		Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt)
	return c, err
}

const updateCategory = `
UPDATE categories
SET name = $1, color = $2
WHERE id = $3
RETURNING id, name, color, created_at
`

type UpdateCategoryParams struct {
	Name  string
	Color string
	ID    uuid.UUID
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, updateCategory, arg.Name, arg.Color, arg.ID).
		Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt)
	return c, err
}

const deleteCategory = `
DELETE FROM categories
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteCategory, id).Scan(&deleted)
	return deleted, err
}
