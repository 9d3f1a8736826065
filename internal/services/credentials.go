package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/sirupsen/logrus"
)

const (
	VerificationCodeLength = 6
	VerificationCodeTTL    = 15 * time.Minute
)

// ResendVerification mails a fresh email verification code.
func (s *ProfileService) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validators.IsValidEmail(email) {
		return apperrors.InvalidInput("Invalid email.")
	}
	if err := s.issueCode(ctx, models.PurposeVerifyEmail, email, s.identity.VerificationLink); err != nil {
		return asAppError(err, "Error sending verification code, please try again.")
	}
	return nil
}

// ConfirmEmail marks the identity's email as verified when code matches the
// last one issued for it.
func (s *ProfileService) ConfirmEmail(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	if !validators.IsValidEmail(email) {
		return apperrors.InvalidInput("Invalid email.")
	}
	if err := s.consumeCode(ctx, models.PurposeVerifyEmail, email, code); err != nil {
		return err
	}
	if err := s.identity.MarkEmailVerified(ctx, email); err != nil {
		return asAppError(err, "Error confirming user, please try again.")
	}
	s.log.WithField("email", email).Info("email verified")
	return nil
}

// ForgotPassword mails a password reset code.
func (s *ProfileService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validators.IsValidEmail(email) {
		return apperrors.InvalidInput("Invalid email.")
	}
	if err := s.issueCode(ctx, models.PurposeResetPassword, email, s.identity.PasswordResetLink); err != nil {
		return asAppError(err, "Error sending forgot password code, please try again.")
	}
	return nil
}

// ChangePassword sets a new password when code matches the last reset code
// issued for email.
func (s *ProfileService) ChangePassword(ctx context.Context, email, code, password string) error {
	email = strings.TrimSpace(email)
	if !validators.IsValidEmail(email) {
		return apperrors.InvalidInput("Invalid email.")
	}
	if !validators.IsValidPassword(password) {
		return apperrors.InvalidInput("Invalid password.")
	}
	if err := s.consumeCode(ctx, models.PurposeResetPassword, email, code); err != nil {
		return err
	}
	if err := s.identity.SetPassword(ctx, email, password); err != nil {
		return asAppError(err, "Error changing password, please try again.")
	}
	s.log.WithField("email", email).Info("password changed")
	return nil
}

// issueCode asks the identity provider for an action link, which also
// confirms the identity exists, then stores and mails a new code.
func (s *ProfileService) issueCode(ctx context.Context, purpose, email string, link func(context.Context, string) (string, error)) error {
	url, err := link(ctx, email)
	if err != nil {
		return err
	}
	code, err := newCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.codes.SaveCode(ctx, purpose, email, code, VerificationCodeTTL); err != nil {
		return err
	}
	msg := models.VerificationMessage{
		Purpose:  purpose,
		Email:    email,
		Code:     code,
		Link:     url,
		IssuedAt: s.now().UTC(),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s code: %w", purpose, err)
	}
	s.log.WithFields(logrus.Fields{"email": email, "purpose": purpose}).Info("verification code issued")
	return nil
}

func (s *ProfileService) consumeCode(ctx context.Context, purpose, email, code string) error {
	if !isCode(code) {
		return apperrors.InvalidInput("Invalid verification code.")
	}
	ok, err := s.codes.ConsumeCode(ctx, purpose, email, code)
	if err != nil {
		return apperrors.Dependency("Error checking verification code, please try again.", err)
	}
	if !ok {
		return apperrors.InvalidInput("Invalid verification code.")
	}
	return nil
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", VerificationCodeLength, n.Int64()), nil
}

func isCode(code string) bool {
	if len(code) != VerificationCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
