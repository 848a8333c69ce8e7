package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadToken covers every way a presented token can fail verification:
// malformed, wrong signature, expired, or unexpected signing method.
var ErrBadToken = errors.New("auth: bad session token")

// SessionClaims is the payload of a portal session token.
type SessionClaims struct {
	AccountID int64 `json:"account_id"`
	jwt.RegisteredClaims
}

// SignSession issues a session token for an account. The token is only
// half of a session; the other half is the cache entry written under
// SessionKey, which is what logout revokes.
func SignSession(accountID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifySession checks a token string and returns its claims, or
// ErrBadToken.
func VerifySession(tokenStr, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrBadToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrBadToken
	}
	return claims, nil
}
