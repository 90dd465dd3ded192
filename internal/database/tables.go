package database

import (
	"context"

	"github.com/google/uuid"
)

const listTables = `
SELECT id, table_number, capacity, status, created_at
FROM restaurant_tables
ORDER BY table_number
`

func (q *Queries) ListTables(ctx context.Context) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RestaurantTable
	for rows.Next() {
		var t RestaurantTable
		if err := rows.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const getTable = `
SELECT id, table_number, capacity, status, created_at
FROM restaurant_tables
WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (RestaurantTable, error) {
	var t RestaurantTable
	err := q.db.QueryRow(ctx, getTable, id).
		Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt)
	return t, err
}

const createTable = `
INSERT INTO restaurant_tables (table_number, capacity, status)
VALUES ($1, $2, $3)
RETURNING id, table_number, capacity, status, created_at
`

type CreateTableParams struct {
	TableNumber int32
	Capacity    int32
	Status      string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (RestaurantTable, error) {
	var t RestaurantTable
	err := q.db.QueryRow(ctx, createTable, arg.TableNumber, arg.Capacity, arg.Status).
		Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt)
	return t, err
}

const updateTable = `
UPDATE restaurant_tables
SET table_number = $1, capacity = $2
WHERE id = $3
RETURNING id, table_number, capacity, status, created_at
`

type UpdateTableParams struct {
	TableNumber int32
	Capacity    int32
	ID          uuid.UUID
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (RestaurantTable, error) {
	var t RestaurantTable
	err := q.db.QueryRow(ctx, updateTable, arg.TableNumber, arg.Capacity, arg.ID).
		Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt)
	return t, err
}

const updateTableStatus = `
UPDATE restaurant_tables
SET status = $1
WHERE id = $2
RETURNING id, table_number, capacity, status, created_at
`

type UpdateTableStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateTableStatus(ctx context.Context, arg UpdateTableStatusParams) (RestaurantTable, error) {
	var t RestaurantTable
	err := q.db.QueryRow(ctx, updateTableStatus, arg.Status, arg.ID).
		Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt)
	return t, err
}

const deleteTable = `
DELETE FROM restaurant_tables
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteTable, id).Scan(&deleted)
	return deleted, err
}
