package session

import (
	"strings"

	"github.com/hospital-is/hisctl/internal/errors"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 8

// SignupRequest is a self-service patient registration.
type SignupRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate runs the checks made before anything is sent to the backend.
func (r SignupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" {
		return errors.New(errors.ErrCodeAuthSignupRejected, "name and email are required")
	}
	if r.Password != r.ConfirmPassword {
		return errors.New(errors.ErrCodeAuthPasswordMismatch, "Passwords do not match")
	}
	if len(r.Password) < MinPasswordLength {
		return errors.New(errors.ErrCodeAuthPasswordTooShort, "Password must be at least 8 characters")
	}
	return nil
}

// AuthResult is what the backend returns for a successful login or signup.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
