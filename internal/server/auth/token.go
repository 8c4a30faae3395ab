// Package auth issues and verifies the bearer tokens carried by admin
// requests. A token is only half of an authorization: the embedded session id
// must also still exist in the session manager.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, mis-signed, and expired tokens alike.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the custom claims embedded in issued tokens.
type Claims struct {
	jwt.RegisteredClaims
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	SessionID string `json:"sessionId"`
}

// Tokens signs and verifies admin bearer tokens with a shared HS256 secret.
// The token lifetime matches the server-side session max age so the two
// expiry mechanisms cannot drift.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer/verifier.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue creates a signed token for an authenticated admin session.
func (t *Tokens) Issue(username, sessionID string) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Username:  username,
		IsAdmin:   true,
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token and returns its claims.
func (t *Tokens) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
