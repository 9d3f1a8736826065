package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// Registrar creates new accounts.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, error)
}

// Credentials runs the email verification and password reset flows.
type Credentials interface {
	ResendVerification(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, email, code string) error
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, email, code, password string) error
}

// AuthHandler handles account sign-up and credential recovery
type AuthHandler struct {
	registrar   Registrar
	credentials Credentials
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(registrar Registrar, credentials Credentials) *AuthHandler {
	return &AuthHandler{registrar: registrar, credentials: credentials}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/resend-verification", h.ResendVerification)
	g.POST("/confirm-email", h.ConfirmEmail)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/change-password", h.ChangePassword)
}

// Register creates the identity and account from a multipart form
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	avatar, err := formUpload(c, "file")
	if err != nil {
		return err
	}

	if _, err := h.registrar.Register(c.Request().Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatar,
	}); err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User created.", nil)
}

// ResendVerification mails a new email verification code
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req models.EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.credentials.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Verification code sent.", nil)
}

// ConfirmEmail verifies the email address with the mailed code
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	var req models.ConfirmEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.credentials.ConfirmEmail(c.Request().Context(), req.Email, req.VerificationCode); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User verified.", nil)
}

// ForgotPassword mails a password reset code
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.credentials.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Forgot password request sent.", nil)
}

// ChangePassword sets a new password with the mailed reset code
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.credentials.ChangePassword(c.Request().Context(), req.Email, req.VerificationCode, req.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password changed successfully.", nil)
}
