package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
)

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and sets the caller to the token UID.
func FirebaseAuthMiddleware(verifier IDTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid or expired ID token", err)
			}

			setCallerID(c, token.UID)
			return next(c)
		}
	}
}
