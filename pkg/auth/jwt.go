// Package auth issues and validates the bearer tokens that protect the
// tradenet API when authentication is enabled.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrEmptySubject  = errors.New("subject cannot be empty")
	ErrInvalidRole   = errors.New("invalid role")
	ErrShortSecret   = errors.New("secret must be at least 32 characters")
)

// Issuer is the iss claim of every token minted by a TokenManager.
const Issuer = "tradenet"

// Valid roles
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
)

var validRoles = map[string]bool{
	RoleAdmin:   true,
	RoleAnalyst: true,
}

// Claims are the JWT claims of an API token
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenValidator abstracts token validation for the HTTP middleware
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// TokenManager signs and validates HS256 tokens
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewTokenManager creates a new token manager.
// Returns an error if the secret is shorter than 32 characters.
func NewTokenManager(secret string, tokenDuration time.Duration) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}

	return &TokenManager{
		secretKey:     []byte(secret),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}, nil
}

// GenerateToken mints a token for subject with the given role
func (m *TokenManager) GenerateToken(subject, role string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	if !validRoles[role] {
		return "", fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	now := m.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a token and returns its claims
func (m *TokenManager) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	if !validRoles[claims.Role] {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidClaims, claims.Role)
	}

	return claims, nil
}

type contextKey struct{}

// WithClaims returns a context carrying claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}
