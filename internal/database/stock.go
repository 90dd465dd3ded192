package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listStock = `
SELECT s.id, s.product_id, s.quantity_available, s.minimum_threshold, s.last_restocked,
       s.updated_at, p.name AS product_name
FROM stock s
JOIN products p ON p.id = s.product_id
WHERE $1::text IS NULL OR p.name ILIKE '%' || $1 || '%'
ORDER BY p.name
`

type ListStockRow struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	QuantityAvailable int32
	MinimumThreshold  int32
	LastRestocked     pgtype.Timestamptz
	UpdatedAt         time.Time
	ProductName       string
}

func (q *Queries) ListStock(ctx context.Context, search pgtype.Text) ([]ListStockRow, error) {
	rows, err := q.db.Query(ctx, listStock, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListStockRow
	for rows.Next() {
		var r ListStockRow
		if err := rows.Scan(&r.ID, &r.ProductID, &r.QuantityAvailable, &r.MinimumThreshold,
			&r.LastRestocked, &r.UpdatedAt, &r.ProductName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getStockForUpdate = `
SELECT id, product_id, quantity_available, minimum_threshold, last_restocked, updated_at
FROM stock
WHERE product_id = $1
FOR UPDATE
`

// GetStockForUpdate locks the product's stock row until the surrounding
// transaction ends. Only meaningful when q wraps a pgx.Tx.
func (q *Queries) GetStockForUpdate(ctx context.Context, productID uuid.UUID) (Stock, error) {
	var s Stock
	err := q.db.QueryRow(ctx, getStockForUpdate, productID).
		Scan(&s.ID, &s.ProductID, &s.QuantityAvailable, &s.MinimumThreshold,
			&s.LastRestocked, &s.UpdatedAt)
	return s, err
}

const upsertStock = `
INSERT INTO stock (product_id, quantity_available, last_restocked, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (product_id) DO UPDATE
SET quantity_available = EXCLUDED.quantity_available,
    last_restocked = COALESCE(EXCLUDED.last_restocked, stock.last_restocked),
    updated_at = now()
RETURNING id, product_id, quantity_available, minimum_threshold, last_restocked, updated_at
`

type UpsertStockParams struct {
	ProductID         uuid.UUID
	QuantityAvailable int32
	LastRestocked     pgtype.Timestamptz
}

func (q *Queries) UpsertStock(ctx context.Context, arg UpsertStockParams) (Stock, error) {
	var s Stock
	err := q.db.QueryRow(ctx, upsertStock, arg.ProductID, arg.QuantityAvailable, arg.LastRestocked).
		Scan(&s.ID, &s.ProductID, &s.QuantityAvailable, &s.MinimumThreshold,
			&s.LastRestocked, &s.UpdatedAt)
	return s, err
}

const updateStockThreshold = `
UPDATE stock
SET minimum_threshold = $1, updated_at = now()
WHERE product_id = $2
RETURNING id, product_id, quantity_available, minimum_threshold, last_restocked, updated_at
`

type UpdateStockThresholdParams struct {
	MinimumThreshold int32
	ProductID        uuid.UUID
}

func (q *Queries) UpdateStockThreshold(ctx context.Context, arg UpdateStockThresholdParams) (Stock, error) {
	var s Stock
	err := q.db.QueryRow(ctx, updateStockThreshold, arg.MinimumThreshold, arg.ProductID).
		Scan(&s.ID, &s.ProductID, &s.QuantityAvailable, &s.MinimumThreshold,
			&s.LastRestocked, &s.UpdatedAt)
	return s, err
}

const createStockMovement = `
INSERT INTO stock_movements (product_id, movement_type, quantity, previous_quantity, new_quantity, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, product_id, movement_type, quantity, previous_quantity, new_quantity, notes, created_at
`

type CreateStockMovementParams struct {
	ProductID        uuid.UUID
	MovementType     string
	Quantity         int32
	PreviousQuantity int32
	NewQuantity      int32
	Notes            pgtype.Text
}

func (q *Queries) CreateStockMovement(ctx context.Context, arg CreateStockMovementParams) (StockMovement, error) {
	var m StockMovement
	err := q.db.QueryRow(ctx, createStockMovement, arg.ProductID, arg.MovementType,
		arg.Quantity, arg.PreviousQuantity, arg.NewQuantity, arg.Notes).
		Scan(&m.ID, &m.ProductID, &m.MovementType, &m.Quantity, &m.PreviousQuantity,
			&m.NewQuantity, &m.Notes, &m.CreatedAt)
	return m, err
}

const listStockMovements = `
SELECT m.id, m.product_id, m.movement_type, m.quantity, m.previous_quantity,
       m.new_quantity, m.notes, m.created_at, p.name AS product_name
FROM stock_movements m
JOIN products p ON p.id = m.product_id
WHERE $1::text IS NULL OR p.name ILIKE '%' || $1 || '%'
ORDER BY m.created_at DESC
LIMIT $2
`

type ListStockMovementsParams struct {
	Search pgtype.Text
	Limit  int32
}

type ListStockMovementsRow struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	MovementType     string
	Quantity         int32
	PreviousQuantity int32
	NewQuantity      int32
	Notes            pgtype.Text
	CreatedAt        time.Time
	ProductName      string
}

func (q *Queries) ListStockMovements(ctx context.Context, arg ListStockMovementsParams) ([]ListStockMovementsRow, error) {
	rows, err := q.db.Query(ctx, listStockMovements, arg.Search, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListStockMovementsRow
	for rows.Next() {
		var r ListStockMovementsRow
		if err := rows.Scan(&r.ID, &r.ProductID, &r.MovementType, &r.Quantity,
			&r.PreviousQuantity, &r.NewQuantity, &r.Notes, &r.CreatedAt, &r.ProductName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
