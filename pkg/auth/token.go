// Package auth issues and validates the bearer tokens that gate the API.
// Tokens are HS256 JWTs minted at user bootstrap; there is no separate login
// flow and no refresh token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims carried by API tokens.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenIssuer mints and validates signed tokens with a shared HS256 secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

// NewTokenIssuer creates an issuer. A zero ttl defaults to 24 hours.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: time.Now}
}

// WithClock overrides the clock for testing.
func (t *TokenIssuer) WithClock(clock func() time.Time) *TokenIssuer {
	t.clock = clock
	return t
}

// Issue mints a token for the given user.
func (t *TokenIssuer) Issue(userID, username string) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("token issuer has no secret")
	}
	now := t.clock().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string.
func (t *TokenIssuer) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.clock().UTC() }))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token subject is required")
	}
	return claims, nil
}
