package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieSigner wraps a session id in an HS256 token so a tampered or forged
// cookie is rejected before any store lookup.
type CookieSigner struct {
	secret []byte
	issuer string
}

func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{
		secret: []byte(secret),
		issuer: "supremefabrics",
	}
}

func (c *CookieSigner) Sign(sid string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse returns the session id carried by value.
func (c *CookieSigner) Parse(value string) (string, error) {
	var claims jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil || token == nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidCookie
	}

	return claims.Subject, nil
}
