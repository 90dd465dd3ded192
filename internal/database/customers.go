package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCustomers = `
SELECT id, first_name, last_name, email, phone, loyalty_points, created_at
FROM customers
WHERE $1::text IS NULL
   OR first_name ILIKE '%' || $1 || '%'
   OR last_name ILIKE '%' || $1 || '%'
   OR email ILIKE '%' || $1 || '%'
ORDER BY last_name, first_name
`

func (q *Queries) ListCustomers(ctx context.Context, search pgtype.Text) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.LoyaltyPoints, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getCustomer = `
SELECT id, first_name, last_name, email, phone, loyalty_points, created_at
FROM customers
WHERE id = $1
`

func (q *Queries) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	var c Customer
	err := q.db.QueryRow(ctx, getCustomer, id).Scan(&c.ID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.LoyaltyPoints, &c.CreatedAt)
	return c, err
}

const createCustomer = `
INSERT INTO customers (first_name, last_name, email, phone)
VALUES ($1, $2, $3, $4)
RETURNING id, first_name, last_name, email, phone, loyalty_points, created_at
`

type CreateCustomerParams struct {
	FirstName string
	LastName  string
	Email     pgtype.Text
	Phone     pgtype.Text
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	var c Customer
	err := q.db.QueryRow(ctx, createCustomer, arg.FirstName, arg.LastName, arg.Email, arg.Phone).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.LoyaltyPoints, &c.CreatedAt)
	return c, err
}

const updateCustomer = `
UPDATE customers
SET first_name = $1, last_name = $2, email = $3, phone = $4, loyalty_points = $5
WHERE id = $6
RETURNING id, first_name, last_name, email, phone, loyalty_points, created_at
`

type UpdateCustomerParams struct {
	FirstName     string
	LastName      string
	Email         pgtype.Text
	Phone         pgtype.Text
	LoyaltyPoints int32
	ID            uuid.UUID
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	var c Customer
	err := q.db.QueryRow(ctx, updateCustomer, arg.FirstName, arg.LastName, arg.Email,
		arg.Phone, arg.LoyaltyPoints, arg.ID).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.LoyaltyPoints, &c.CreatedAt)
	return c, err
}

const deleteCustomer = `
DELETE FROM customers
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteCustomer(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteCustomer, id).Scan(&deleted)
	return deleted, err
}
