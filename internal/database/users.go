package database

import (
	"context"

	"github.com/google/uuid"
)

const getUserByUsername = `
SELECT id, username, hashed_password, full_name, role, is_active, last_login, created_at
FROM users
WHERE username = $1
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByUsername, username).
		Scan(&u.ID, &u.Username, &u.HashedPassword, &u.FullName, &u.Role,
			&u.IsActive, &u.LastLogin, &u.CreatedAt)
	return u, err
}

const getUser = `
SELECT id, username, hashed_password, full_name, role, is_active, last_login, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUser, id).
		Scan(&u.ID, &u.Username, &u.HashedPassword, &u.FullName, &u.Role,
			&u.IsActive, &u.LastLogin, &u.CreatedAt)
	return u, err
}

const listUsers = `
SELECT id, username, hashed_password, full_name, role, is_active, last_login, created_at
FROM users
ORDER BY username
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.FullName, &u.Role,
			&u.IsActive, &u.LastLogin, &u.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const createUser = `
INSERT INTO users (username, hashed_password, full_name, role)
VALUES ($1, $2, $3, $4)
RETURNING id, username, hashed_password, full_name, role, is_active, last_login, created_at
`

type CreateUserParams struct {
	Username       string
	HashedPassword string
	FullName       string
	Role           string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, createUser, arg.Username, arg.HashedPassword, arg.FullName, arg.Role).
		Scan(&u.ID, &u.Username, &u.HashedPassword, &u.FullName, &u.Role,
			&u.IsActive, &u.LastLogin, &u.CreatedAt)
	return u, err
}

const setUserActive = `
UPDATE users
SET is_active = $1
WHERE id = $2
RETURNING id, username, hashed_password, full_name, role, is_active, last_login, created_at
`

type SetUserActiveParams struct {
	IsActive bool
	ID       uuid.UUID
}

func (q *Queries) SetUserActive(ctx context.Context, arg SetUserActiveParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, setUserActive, arg.IsActive, arg.ID).
		Scan(&u.ID, &u.Username, &u.HashedPassword, &u.FullName, &u.Role,
			&u.IsActive, &u.LastLogin, &u.CreatedAt)
	return u, err
}

const touchUserLastLogin = `
UPDATE users
SET last_login = now()
WHERE id = $1
`

func (q *Queries) TouchUserLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, touchUserLastLogin, id)
	return err
}
