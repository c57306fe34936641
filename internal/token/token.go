// Package token mints and verifies room access tokens.
// Tokens are HS256 JWTs granting one identity access to one room.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultTTL is the default token lifetime.
const DefaultTTL = 6 * time.Hour

// Errors returned by Verify.
var (
	ErrInvalidToken = errors.New("token: invalid token")
	ErrWrongRoom    = errors.New("token: token not valid for this room")
)

// Claims are the JWT claims carried by a room token.
type Claims struct {
	Room string `json:"room"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Mint creates a signed room token for the given identity.
func Mint(apiKey, apiSecret, room, identity string, ttl time.Duration) (string, error) {
	if apiKey == "" || apiSecret == "" {
		return "", errors.New("token: API key and secret required")
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := Claims{
		Room: room,
		Name: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(apiSecret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks a token signature and room grant, returning the identity.
func Verify(apiSecret, room, tokenString string) (string, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(apiSecret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	if claims.Room != room {
		return "", ErrWrongRoom
	}
	return claims.Subject, nil
}
