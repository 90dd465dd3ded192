package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listMenus = `
SELECT id, name, description, price, is_available, created_at
FROM menus
ORDER BY name
`

func (q *Queries) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := q.db.Query(ctx, listMenus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.IsAvailable, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenu = `
SELECT id, name, description, price, is_available, created_at
FROM menus
WHERE id = $1
`

func (q *Queries) GetMenu(ctx context.Context, id uuid.UUID) (Menu, error) {
	var m Menu
	err := q.db.QueryRow(ctx, getMenu, id).
		Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.IsAvailable, &m.CreatedAt)
	return m, err
}

const createMenu = `
INSERT INTO menus (name, description, price, is_available)
VALUES ($1, $2, $3, $4)
RETURNING id, name, description, price, is_available, created_at
`

type CreateMenuParams struct {
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	IsAvailable bool
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	var m Menu
	err := q.db.QueryRow(ctx, createMenu, arg.Name, arg.Description, arg.Price, arg.IsAvailable).
		Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.IsAvailable, &m.CreatedAt)
	return m, err
}

const updateMenu = `
UPDATE menus
SET name = $1, description = $2, price = $3, is_available = $4
WHERE id = $5
RETURNING id, name, description, price, is_available, created_at
`

type UpdateMenuParams struct {
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	IsAvailable bool
	ID          uuid.UUID
}

func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (Menu, error) {
	var m Menu
	err := q.db.QueryRow(ctx, updateMenu, arg.Name, arg.Description, arg.Price, arg.IsAvailable, arg.ID).
		Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.IsAvailable, &m.CreatedAt)
	return m, err
}

const deleteMenu = `
DELETE FROM menus
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteMenu(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteMenu, id).Scan(&deleted)
	return deleted, err
}

const listMenuProductsByMenu = `
SELECT mp.id, mp.menu_id, mp.product_id, mp.quantity, p.name AS product_name
FROM menu_products mp
JOIN products p ON p.id = mp.product_id
WHERE mp.menu_id = $1
ORDER BY p.name
`

type ListMenuProductsByMenuRow struct {
	ID          uuid.UUID
	MenuID      uuid.UUID
	ProductID   uuid.UUID
	Quantity    int32
	ProductName string
}

func (q *Queries) ListMenuProductsByMenu(ctx context.Context, menuID uuid.UUID) ([]ListMenuProductsByMenuRow, error) {
	rows, err := q.db.Query(ctx, listMenuProductsByMenu, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMenuProductsByMenuRow
	for rows.Next() {
		var r ListMenuProductsByMenuRow
		if err := rows.Scan(&r.ID, &r.MenuID, &r.ProductID, &r.Quantity, &r.ProductName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const createMenuProduct = `
INSERT INTO menu_products (menu_id, product_id, quantity)
VALUES ($1, $2, $3)
RETURNING id, menu_id, product_id, quantity
`

type CreateMenuProductParams struct {
	MenuID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

func (q *Queries) CreateMenuProduct(ctx context.Context, arg CreateMenuProductParams) (MenuProduct, error) {
	var mp MenuProduct
	err := q.db.QueryRow(ctx, createMenuProduct, arg.MenuID, arg.ProductID, arg.Quantity).
		Scan(&mp.ID, &mp.MenuID, &mp.ProductID, &mp.Quantity)
	return mp, err
}

const deleteMenuProductsByMenu = `
DELETE FROM menu_products
WHERE menu_id = $1
`

func (q *Queries) DeleteMenuProductsByMenu(ctx context.Context, menuID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteMenuProductsByMenu, menuID)
	return err
}
