package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	errMissingSecret     = errors.New("jwt secret not configured")
)

// Claims represents the identity contained in a JWT.
type Claims struct {
	Email string    `json:"email"`
	Type  TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Principal is the verified identity behind a bearer token.
type Principal struct {
	Email string
}

// Signer issues and verifies HS256 tokens with a single shared secret.
type Signer struct {
	secret     []byte
	subject    string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSigner builds a Signer. Non-positive TTLs fall back to 24h access and 30d refresh.
func NewSigner(secret, subject string, accessTTL, refreshTTL time.Duration, opts ...SignerOption) (*Signer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errMissingSecret
	}
	if strings.TrimSpace(subject) == "" {
		subject = "access"
	}
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	s := &Signer{
		secret:     []byte(secret),
		subject:    subject,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueAccess returns a signed access token for email.
func (s *Signer) IssueAccess(email string) (string, error) {
	return s.issue(email, TokenAccess, s.accessTTL)
}

// IssueRefresh returns a signed refresh token for email.
func (s *Signer) IssueRefresh(email string) (string, error) {
	return s.issue(email, TokenRefresh, s.refreshTTL)
}

func (s *Signer) issue(email string, typ TokenType, ttl time.Duration) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("email is required")
	}
	now := s.now().UTC()
	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks signature, expiry, subject and type.
func (s *Signer) Verify(token string, want TokenType) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithSubject(s.subject),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidCredential
	}
	if strings.TrimSpace(claims.Email) == "" {
		return Claims{}, ErrInvalidCredential
	}
	if claims.Type != want {
		return Claims{}, ErrInvalidCredential
	}
	return claims, nil
}

// Authenticate resolves an Authorization header value to a Principal.
// A leading "Bearer " is optional.
func (s *Signer) Authenticate(header string) (Principal, error) {
	token := strings.TrimSpace(header)
	if len(token) >= 6 && strings.EqualFold(token[:6], "bearer") && (len(token) == 6 || token[6] == ' ') {
		token = strings.TrimSpace(token[6:])
	}
	if token == "" {
		return Principal{}, ErrMissingCredential
	}
	claims, err := s.Verify(token, TokenAccess)
	if err != nil {
		return Principal{}, err
	}
	return Principal{Email: claims.Email}, nil
}
