package middleware

import (
	"strings"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
)

const callerIDKey = "callerID"

// CallerID returns the authenticated caller's account ID set by one of the
// auth middlewares.
func CallerID(c echo.Context) (string, error) {
	id, ok := c.Get(callerIDKey).(string)
	if !ok || id == "" {
		return "", apperrors.Unauthenticated("User not authenticated")
	}
	return id, nil
}

func setCallerID(c echo.Context, id string) {
	c.Set(callerIDKey, id)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.Unauthenticated("Authorization header is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", apperrors.Unauthenticated("Authorization header must be in Bearer format")
	}
	return parts[1], nil
}
