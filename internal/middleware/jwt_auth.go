package middleware

import (
	"time"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTAuthMiddleware verifies HS256 tokens signed with secret and sets the
// caller to the token subject.
func JWTAuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, apperrors.Unauthenticated("Unexpected signing method")
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid token", err)
			}
			if claims.Subject == "" {
				return apperrors.Unauthenticated("Token has no subject")
			}

			setCallerID(c, claims.Subject)
			return next(c)
		}
	}
}

// SignJWT issues an HS256 token for subject valid for ttl.
func SignJWT(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
