// ABOUTME: Read-only inspection of JWT session tokens
// ABOUTME: Decodes claims without verification to show subject and expiry

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when a session token cannot be decoded as a JWT.
var ErrNotJWT = errors.New("session token is not a JWT")

// TokenInfo holds the claims an admin cares about.
type TokenInfo struct {
	Subject   string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token is past its exp claim at now.
// Tokens without exp never expire.
func (t TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// Inspect decodes token without verifying its signature. The client never
// holds the backend's signing key, so this is for display only.
func Inspect(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	info := &TokenInfo{}

	// Backends commonly put the user id in "id" or "userId" instead of "sub".
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if id, ok := claims["id"].(string); ok {
		info.Subject = id
	} else if id, ok := claims["userId"].(string); ok {
		info.Subject = id
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}

	return info, nil
}
