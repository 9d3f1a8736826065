// Package validators adapts go-playground/validator to echo and carries the
// account credential rules shared by handlers and services.
package validators

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const passwordSymbols = "!@#$%^&*"

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with the custom "password" tag registered.
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// IsValidEmail reports whether email has a plausible user@domain.tld form.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a lowercase letter, an
// uppercase letter, a digit and one of !@#$%^&*.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit && strings.ContainsAny(password, passwordSymbols)
}

// ValidationMessage flattens validator errors into a single client message.
func ValidationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email."
	case "password":
		return "Invalid password."
	}
	return "Invalid " + strings.ToLower(fe.Field()) + "."
}
