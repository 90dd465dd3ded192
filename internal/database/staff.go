package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listStaff = `
SELECT id, first_name, last_name, role, is_active, hire_date, created_at
FROM staff
WHERE NOT $1::bool OR is_active
ORDER BY last_name, first_name
`

func (q *Queries) ListStaff(ctx context.Context, activeOnly bool) ([]Staff, error) {
	rows, err := q.db.Query(ctx, listStaff, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.IsActive,
			&s.HireDate, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const getStaff = `
SELECT id, first_name, last_name, role, is_active, hire_date, created_at
FROM staff
WHERE id = $1
`

func (q *Queries) GetStaff(ctx context.Context, id uuid.UUID) (Staff, error) {
	var s Staff
	err := q.db.QueryRow(ctx, getStaff, id).Scan(&s.ID, &s.FirstName, &s.LastName,
		&s.Role, &s.IsActive, &s.HireDate, &s.CreatedAt)
	return s, err
}

const createStaff = `
INSERT INTO staff (first_name, last_name, role, hire_date)
VALUES ($1, $2, $3, COALESCE($4, CURRENT_DATE))
RETURNING id, first_name, last_name, role, is_active, hire_date, created_at
`

type CreateStaffParams struct {
	FirstName string
	LastName  string
	Role      string
	HireDate  pgtype.Date
}

func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	var s Staff
	err := q.db.QueryRow(ctx, createStaff, arg.FirstName, arg.LastName, arg.Role, arg.HireDate).
		Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.IsActive, &s.HireDate, &s.CreatedAt)
	return s, err
}

const updateStaff = `
UPDATE staff
SET first_name = $1, last_name = $2, role = $3, is_active = $4
WHERE id = $5
RETURNING id, first_name, last_name, role, is_active, hire_date, created_at
`

type UpdateStaffParams struct {
	FirstName string
	LastName  string
	Role      string
	IsActive  bool
	ID        uuid.UUID
}

func (q *Queries) UpdateStaff(ctx context.Context, arg UpdateStaffParams) (Staff, error) {
	var s Staff
	err := q.db.QueryRow(ctx, updateStaff, arg.FirstName, arg.LastName, arg.Role,
		arg.IsActive, arg.ID).
		Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.IsActive, &s.HireDate, &s.CreatedAt)
	return s, err
}

const getStaffStats = `
SELECT
    COUNT(o.id) AS orders_taken,
    COALESCE(SUM(o.total_amount) FILTER (WHERE o.status = 'paid'), 0) AS revenue
FROM orders o
WHERE o.staff_id = $1
`

type GetStaffStatsRow struct {
	OrdersTaken int64
	Revenue     pgtype.Numeric
}

func (q *Queries) GetStaffStats(ctx context.Context, staffID uuid.UUID) (GetStaffStatsRow, error) {
	var r GetStaffStatsRow
	err := q.db.QueryRow(ctx, getStaffStats, staffID).Scan(&r.OrdersTaken, &r.Revenue)
	return r, err
}
