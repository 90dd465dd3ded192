package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSettings = `
SELECT id, restaurant_name, currency, currency_symbol, address, phone, email, updated_at
FROM restaurant_settings
LIMIT 1
`

func (q *Queries) GetSettings(ctx context.Context) (RestaurantSetting, error) {
	var s RestaurantSetting
	err := q.db.QueryRow(ctx, getSettings).
		Scan(&s.ID, &s.RestaurantName, &s.Currency, &s.CurrencySymbol,
			&s.Address, &s.Phone, &s.Email, &s.UpdatedAt)
	return s, err
}

const updateSettings = `
UPDATE restaurant_settings
SET restaurant_name = $1, currency = $2, currency_symbol = $3,
    address = $4, phone = $5, email = $6, updated_at = now()
WHERE id = (SELECT id FROM restaurant_settings LIMIT 1)
RETURNING id, restaurant_name, currency, currency_symbol, address, phone, email, updated_at
`

type UpdateSettingsParams struct {
	RestaurantName string
	Currency       string
	CurrencySymbol string
	Address        pgtype.Text
	Phone          pgtype.Text
	Email          pgtype.Text
}

func (q *Queries) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) (RestaurantSetting, error) {
	var s RestaurantSetting
	err := q.db.QueryRow(ctx, updateSettings, arg.RestaurantName, arg.Currency,
		arg.CurrencySymbol, arg.Address, arg.Phone, arg.Email).
		Scan(&s.ID, &s.RestaurantName, &s.Currency, &s.CurrencySymbol,
			&s.Address, &s.Phone, &s.Email, &s.UpdatedAt)
	return s, err
}
