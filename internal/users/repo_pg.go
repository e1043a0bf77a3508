package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, email, hashedPassword string) (Account, error) {
	const query = `
INSERT INTO users (email, hashed_password, created_at)
VALUES ($1, $2, now())
RETURNING id, created_at`
	acc := Account{Email: email, HashedPassword: hashedPassword}
	err := r.DB.QueryRowContext(ctx, query, email, hashedPassword).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, ErrAccountExists
		}
		return Account{}, err
	}
	return acc, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	const query = `
SELECT id, email, hashed_password, created_at
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Account, error) {
	const query = `
SELECT id, email, hashed_password, created_at
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) scanOne(row *sql.Row) (Account, error) {
	var acc Account
	if err := row.Scan(&acc.ID, &acc.Email, &acc.HashedPassword, &acc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return acc, nil
}

var _ Repo = (*PGRepo)(nil)
