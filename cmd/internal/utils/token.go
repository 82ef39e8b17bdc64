package utils

import (
	"errors"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// TokenData carries the actor identity attached to every mutating call.
type TokenData struct {
	Sub   string
	Email string
	Name  string
}

var ErrInvalidToken = errors.New("invalid or missing auth token")

// ParseTokenDataCtx extracts the actor identity from the request's bearer
// token. Tokens are signed with the shared HMAC secret from JWT_SECRET.
func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, ErrInvalidToken
	}
	return ParseTokenData(raw)
}

func ParseTokenData(raw string) (*TokenData, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	data := &TokenData{
		Sub:   claimString(claims, "sub"),
		Email: claimString(claims, "email"),
		Name:  claimString(claims, "name"),
	}
	if data.Email == "" {
		return nil, ErrInvalidToken
	}
	return data, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
