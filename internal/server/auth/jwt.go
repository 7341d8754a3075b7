// Package auth mints and verifies the bearer tokens accepted by the
// reconciliation endpoint. Session management is out of scope; tokens are
// issued out of band (or by tests) and verified here.
package auth

import (
	"errors"
	"time"

	"github.com/avelichka/lectern/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the authenticated
// principal on whose behalf mutations are reconciled.
type Claims struct {
	jwt.RegisteredClaims
	Principal string `json:"principal"`
}

// GenerateToken signs an HS256 token for the given principal.
func GenerateToken(principal string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Principal: principal,
	})

	return token.SignedString(secretKey)
}

// PrincipalFromToken verifies tokenString and returns the embedded
// principal. Expired tokens map to common.ErrTokenExpired, anything else
// that fails verification to common.ErrInvalidToken.
func PrincipalFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Principal == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Principal, nil
}
