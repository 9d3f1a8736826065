package models

import "time"

// Purposes a one-time code can be issued for.
const (
	PurposeVerifyEmail   = "verify-email"
	PurposeResetPassword = "reset-password"
)

// VerificationMessage is the notification sent to an email address when a
// code is issued. Link is the identity provider's action link for the same
// purpose.
type VerificationMessage struct {
	Purpose  string    `json:"purpose"`
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	Link     string    `json:"link,omitempty"`
	IssuedAt time.Time `json:"issuedAt"`
}

// EmailRequest is the JSON body of the resend-verification and
// forgot-password endpoints.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmEmailRequest is the JSON body of the confirm-email endpoint.
type ConfirmEmailRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verificationCode"`
}

// ChangePasswordRequest is the JSON body of the change-password endpoint.
type ChangePasswordRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verificationCode"`
	Password         string `json:"password" validate:"required,password"`
}
