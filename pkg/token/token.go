package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenTTL is how long an issued token stays valid. Tokens carry no server
// side state, so expiry is the only thing that ends a session.
const tokenTTL = 48 * time.Hour

// Claims structure for the session JWT. The authenticated username travels in
// the registered Subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Username returns the authenticated username asserted by the token.
func (c *Claims) Username() string {
	return c.Subject
}

// Generate signs an HS256 token asserting username, valid for 48 hours.
func Generate(secret []byte, issuer, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			ID:        uuid.New().String(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Verify parses tokenStr and checks signature, signing method, issuer and
// expiry. It returns the claims on success.
func Verify(secret []byte, issuer, tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
