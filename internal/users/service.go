package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"docextract-backend/internal/shared/auth"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (Account, error) {
	if s == nil || s.Repo == nil {
		return Account{}, errors.New("users service not configured")
	}
	email = strings.TrimSpace(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return Account{}, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if password == "" {
		return Account{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return Account{}, ErrAccountExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.Create(ctx, email, hashed)
}

// VerifyPassword returns the account when email and password match.
// Unknown email and wrong password both yield ErrInvalidLogin.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (Account, error) {
	if s == nil || s.Repo == nil {
		return Account{}, errors.New("users service not configured")
	}
	acc, err := s.Repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrInvalidLogin
		}
		return Account{}, err
	}
	if !auth.CheckPassword(acc.HashedPassword, password) {
		return Account{}, ErrInvalidLogin
	}
	return acc, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	if s == nil || s.Repo == nil {
		return Account{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(email) == "" {
		return Account{}, ErrAccountNotFound
	}
	return s.Repo.GetByEmail(ctx, email)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Account, error) {
	if s == nil || s.Repo == nil {
		return Account{}, errors.New("users service not configured")
	}
	if id <= 0 {
		return Account{}, ErrAccountNotFound
	}
	return s.Repo.GetByID(ctx, id)
}
