package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// identityKey is the gin context key carrying the authenticated owner id.
const identityKey = "user_id"

// Claims are the session token claims. UserID is the owner identity every
// store operation is scoped to.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// MintToken issues an HS256 session token for userID. Used by the dev `token`
// command and by tests; production deployments bring their own issuer sharing
// the secret.
func MintToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   "session",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
