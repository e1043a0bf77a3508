package users

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrInvalidLogin    = errors.New("invalid email or password")
	ErrInvalidInput    = errors.New("invalid input")
)

// Repo persists accounts.
type Repo interface {
	Create(ctx context.Context, email, hashedPassword string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id int64) (Account, error)
}
