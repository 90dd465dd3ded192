package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (order_number, table_id, customer_id, staff_id, status, total_amount, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_number, table_id, customer_id, staff_id, status, total_amount, notes, created_at
`

type CreateOrderParams struct {
	OrderNumber string
	TableID     pgtype.UUID
	CustomerID  pgtype.UUID
	StaffID     pgtype.UUID
	Status      string
	TotalAmount pgtype.Numeric
	Notes       pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, createOrder, arg.OrderNumber, arg.TableID, arg.CustomerID,
		arg.StaffID, arg.Status, arg.TotalAmount, arg.Notes).
		Scan(&o.ID, &o.OrderNumber, &o.TableID, &o.CustomerID, &o.StaffID,
			&o.Status, &o.TotalAmount, &o.Notes, &o.CreatedAt)
	return o, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, product_id, quantity, unit_price, notes
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	Notes     pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	err := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.ProductID, arg.Quantity,
		arg.UnitPrice, arg.Notes).
		Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Notes)
	return it, err
}

const getOrder = `
SELECT id, order_number, table_id, customer_id, staff_id, status, total_amount, notes, created_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, getOrder, id).
		Scan(&o.ID, &o.OrderNumber, &o.TableID, &o.CustomerID, &o.StaffID,
			&o.Status, &o.TotalAmount, &o.Notes, &o.CreatedAt)
	return o, err
}

const getOrderForUpdate = `
SELECT id, order_number, table_id, customer_id, staff_id, status, total_amount, notes, created_at
FROM orders
WHERE id = $1
FOR UPDATE
`

// GetOrderForUpdate locks the order row for the duration of the surrounding
// transaction. Only meaningful when q wraps a pgx.Tx.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, getOrderForUpdate, id).
		Scan(&o.ID, &o.OrderNumber, &o.TableID, &o.CustomerID, &o.StaffID,
			&o.Status, &o.TotalAmount, &o.Notes, &o.CreatedAt)
	return o, err
}

const listOrders = `
SELECT id, order_number, table_id, customer_id, staff_id, status, total_amount, notes, created_at
FROM orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::text IS NULL OR order_number ILIKE '%' || $2 || '%')
  AND ($3::uuid IS NULL OR table_id = $3)
  AND ($4::timestamptz IS NULL OR created_at >= $4)
  AND ($5::timestamptz IS NULL OR created_at < $5)
ORDER BY created_at DESC
LIMIT $6 OFFSET $7
`

type ListOrdersParams struct {
	Status    pgtype.Text
	Search    pgtype.Text
	TableID   pgtype.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.Search, arg.TableID,
		arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.TableID, &o.CustomerID, &o.StaffID,
			&o.Status, &o.TotalAmount, &o.Notes, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOrderItemsByOrder = `
SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.notes,
       p.name AS product_name
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY p.name
`

type ListOrderItemsByOrderRow struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Quantity    int32
	UnitPrice   pgtype.Numeric
	Notes       pgtype.Text
	ProductName string
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderItemsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrderItemsByOrderRow
	for rows.Next() {
		var r ListOrderItemsByOrderRow
		if err := rows.Scan(&r.ID, &r.OrderID, &r.ProductID, &r.Quantity, &r.UnitPrice,
			&r.Notes, &r.ProductName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $1
WHERE id = $2 AND status = $3
RETURNING id, order_number, table_id, customer_id, staff_id, status, total_amount, notes, created_at
`

type UpdateOrderStatusParams struct {
	Status     string
	ID         uuid.UUID
	FromStatus string
}

// UpdateOrderStatus only succeeds when the row still carries FromStatus;
// pgx.ErrNoRows means the status changed concurrently.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, updateOrderStatus, arg.Status, arg.ID, arg.FromStatus).
		Scan(&o.ID, &o.OrderNumber, &o.TableID, &o.CustomerID, &o.StaffID,
			&o.Status, &o.TotalAmount, &o.Notes, &o.CreatedAt)
	return o, err
}
