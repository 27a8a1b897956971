package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims decodes the registered claims of token without verifying the
// signature. The client never holds the signing key.
func TokenClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired reports whether token carries an expiry at or before now. Opaque
// or undecodable tokens are never considered expired.
func Expired(token string, now time.Time) bool {
	claims, err := TokenClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
