package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getDailySales = `
SELECT DATE(o.created_at) AS sale_date,
       COUNT(o.id) AS order_count,
       COALESCE(SUM(o.total_amount), 0) AS total_revenue
FROM orders o
WHERE o.status = 'paid'
  AND o.created_at >= $1
  AND o.created_at < $2
GROUP BY DATE(o.created_at)
ORDER BY sale_date
`

type GetDailySalesParams struct {
	StartDate time.Time
	EndDate   time.Time
}

type GetDailySalesRow struct {
	SaleDate     pgtype.Date
	OrderCount   int64
	TotalRevenue pgtype.Numeric
}

func (q *Queries) GetDailySales(ctx context.Context, arg GetDailySalesParams) ([]GetDailySalesRow, error) {
	rows, err := q.db.Query(ctx, getDailySales, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetDailySalesRow
	for rows.Next() {
		var r GetDailySalesRow
		if err := rows.Scan(&r.SaleDate, &r.OrderCount, &r.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getCategorySales = `
SELECT c.id AS category_id,
       COALESCE(c.name, 'Non catégorisé') AS category_name,
       COALESCE(SUM(oi.quantity * oi.unit_price), 0) AS total_revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN products p ON p.id = oi.product_id
LEFT JOIN categories c ON c.id = p.category_id
WHERE o.status = 'paid'
  AND o.created_at >= $1
  AND o.created_at < $2
GROUP BY c.id, c.name
ORDER BY total_revenue DESC
`

type GetCategorySalesParams struct {
	StartDate time.Time
	EndDate   time.Time
}

type GetCategorySalesRow struct {
	CategoryID   pgtype.UUID
	CategoryName string
	TotalRevenue pgtype.Numeric
}

func (q *Queries) GetCategorySales(ctx context.Context, arg GetCategorySalesParams) ([]GetCategorySalesRow, error) {
	rows, err := q.db.Query(ctx, getCategorySales, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCategorySalesRow
	for rows.Next() {
		var r GetCategorySalesRow
		if err := rows.Scan(&r.CategoryID, &r.CategoryName, &r.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getTopProducts = `
SELECT p.id AS product_id,
       p.name AS product_name,
       COALESCE(SUM(oi.quantity), 0) AS quantity_sold,
       COALESCE(SUM(oi.quantity * oi.unit_price), 0) AS total_revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN products p ON p.id = oi.product_id
WHERE o.status = 'paid'
  AND o.created_at >= $1
  AND o.created_at < $2
GROUP BY p.id, p.name
ORDER BY quantity_sold DESC
LIMIT $3
`

type GetTopProductsParams struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int32
}

type GetTopProductsRow struct {
	ProductID    uuid.UUID
	ProductName  string
	QuantitySold int64
	TotalRevenue pgtype.Numeric
}

func (q *Queries) GetTopProducts(ctx context.Context, arg GetTopProductsParams) ([]GetTopProductsRow, error) {
	rows, err := q.db.Query(ctx, getTopProducts, arg.StartDate, arg.EndDate, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetTopProductsRow
	for rows.Next() {
		var r GetTopProductsRow
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.QuantitySold, &r.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
