// Package auth exposes account signup, signin and token refresh.
package auth

import (
	"context"
	"errors"
	"fmt"

	sharedauth "docextract-backend/internal/shared/auth"
	"docextract-backend/internal/users"
)

// TokenIssuer issues and verifies signed tokens.
type TokenIssuer interface {
	IssueAccess(email string) (string, error)
	IssueRefresh(email string) (string, error)
	Verify(token string, want sharedauth.TokenType) (sharedauth.Claims, error)
}

// Tokens is the credential pair returned by SignIn.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Service coordinates account storage and token issuance.
type Service struct {
	Users  *users.Service
	Tokens TokenIssuer
}

func NewService(u *users.Service, tokens TokenIssuer) *Service {
	return &Service{Users: u, Tokens: tokens}
}

// SignUp registers a new account.
func (s *Service) SignUp(ctx context.Context, email, password string) (users.Account, error) {
	return s.Users.Register(ctx, email, password)
}

// SignIn checks credentials and issues an access and refresh token.
func (s *Service) SignIn(ctx context.Context, email, password string) (users.Account, Tokens, error) {
	acc, err := s.Users.VerifyPassword(ctx, email, password)
	if err != nil {
		return users.Account{}, Tokens{}, err
	}
	access, err := s.Tokens.IssueAccess(acc.Email)
	if err != nil {
		return users.Account{}, Tokens{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Tokens.IssueRefresh(acc.Email)
	if err != nil {
		return users.Account{}, Tokens{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return acc, Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token.
// The account must still exist.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (users.Account, string, error) {
	if refreshToken == "" {
		return users.Account{}, "", sharedauth.ErrMissingCredential
	}
	claims, err := s.Tokens.Verify(refreshToken, sharedauth.TokenRefresh)
	if err != nil {
		return users.Account{}, "", err
	}
	acc, err := s.Users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, users.ErrAccountNotFound) {
			return users.Account{}, "", sharedauth.ErrInvalidCredential
		}
		return users.Account{}, "", err
	}
	access, err := s.Tokens.IssueAccess(acc.Email)
	if err != nil {
		return users.Account{}, "", fmt.Errorf("issue access token: %w", err)
	}
	return acc, access, nil
}
