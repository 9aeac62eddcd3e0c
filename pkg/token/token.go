// Package token issues and verifies the HS256 access tokens used by the storefront.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard JWT claims plus the admin flag, so the admin gate
// can decide without a database round-trip.
type Claims struct {
	jwt.RegisteredClaims
	IsAdmin bool `json:"is_admin"`
}

// Generate signs a token whose subject is the user id.
func Generate(secret, issuer, userID string, isAdmin bool, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("token: empty secret")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		IsAdmin: isAdmin,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse validates the token signature and expiry and returns the subject and admin flag.
func Parse(secret, tokenString string) (userID string, isAdmin bool, err error) {
	if secret == "" {
		return "", false, fmt.Errorf("token: empty secret")
	}
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", false, err
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return "", false, fmt.Errorf("token: invalid claims")
	}
	return claims.Subject, claims.IsAdmin, nil
}
