// Package auth verifies Supabase access tokens and tracks signed-out tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrMissingSubject = errors.New("missing sub in claims")
)

// DefaultAudience is the audience Supabase sets on user access tokens
const DefaultAudience = "authenticated"

// SupabaseClaims are the claims of a Supabase access token
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

// TokenID returns the id used for revocation. Supabase tokens carry a
// session_id and only sometimes a jti.
func (c *SupabaseClaims) TokenID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.SessionID
}

// SupabaseVerifier validates HS256 access tokens signed with the project JWT secret
type SupabaseVerifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
}

// NewSupabaseVerifier creates a verifier. An empty audience defaults to "authenticated".
func NewSupabaseVerifier(secret, audience string) *SupabaseVerifier {
	if audience == "" {
		audience = DefaultAudience
	}
	return &SupabaseVerifier{
		secret:   []byte(secret),
		audience: audience,
		leeway:   30 * time.Second,
	}
}

// Verify parses token and returns the signed-in user it identifies
func (v *SupabaseVerifier) Verify(_ context.Context, token string) (*session.User, error) {
	claims := &SupabaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return &session.User{
		ID:        claims.Subject,
		Email:     claims.Email,
		TokenID:   claims.TokenID(),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
