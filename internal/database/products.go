package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listProducts = `
SELECT id, category_id, name, description, price, is_available, preparation_time, created_at
FROM products
WHERE ($1::uuid IS NULL OR category_id = $1)
  AND (NOT $2::bool OR is_available)
  AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
ORDER BY name
`

type ListProductsParams struct {
	CategoryID    pgtype.UUID
	AvailableOnly bool
	Search        pgtype.Text
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.CategoryID, arg.AvailableOnly, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
			&p.IsAvailable, &p.PreparationTime, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getProduct = `
SELECT id, category_id, name, description, price, is_available, preparation_time, created_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	var p Product
	err := q.db.QueryRow(ctx, getProduct, id).Scan(&p.ID, &p.CategoryID, &p.Name,
		&p.Description, &p.Price, &p.IsAvailable, &p.PreparationTime, &p.CreatedAt)
	return p, err
}

const createProduct = `
INSERT INTO products (category_id, name, description, price, is_available, preparation_time)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, category_id, name, description, price, is_available, preparation_time, created_at
`

type CreateProductParams struct {
	CategoryID      pgtype.UUID
	Name            string
	Description     pgtype.Text
	Price           pgtype.Numeric
	IsAvailable     bool
	PreparationTime pgtype.Int4
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	var p Product
	err := q.db.QueryRow(ctx, createProduct, arg.CategoryID, arg.Name, arg.Description,
		arg.Price, arg.IsAvailable, arg.PreparationTime).
		Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
			&p.IsAvailable, &p.PreparationTime, &p.CreatedAt)
	return p, err
}

const updateProduct = `
UPDATE products
SET category_id = $1, name = $2, description = $3, price = $4,
    is_available = $5, preparation_time = $6
WHERE id = $7
RETURNING id, category_id, name, description, price, is_available, preparation_time, created_at
`

type UpdateProductParams struct {
	CategoryID      pgtype.UUID
	Name            string
	Description     pgtype.Text
	Price           pgtype.Numeric
	IsAvailable     bool
	PreparationTime pgtype.Int4
	ID              uuid.UUID
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	var p Product
	err := q.db.QueryRow(ctx, updateProduct, arg.CategoryID, arg.Name, arg.Description,
		arg.Price, arg.IsAvailable, arg.PreparationTime, arg.ID).
		Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
			&p.IsAvailable, &p.PreparationTime, &p.CreatedAt)
	return p, err
}

const deleteProduct = `
DELETE FROM products
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteProduct, id).Scan(&deleted)
	return deleted, err
}
