package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeAuthSignupRejected     ErrorCode = "AUTH-002"
	ErrCodeAuthAlreadyRegistered  ErrorCode = "AUTH-003"
	ErrCodeAuthPasswordMismatch   ErrorCode = "AUTH-004"
	ErrCodeAuthPasswordTooShort   ErrorCode = "AUTH-005"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionNotFound ErrorCode = "SESSION-001"
	ErrCodeSessionExpired  ErrorCode = "SESSION-002"
	ErrCodeSessionStorage  ErrorCode = "SESSION-003"
	ErrCodeSessionCorrupt  ErrorCode = "SESSION-004"

	// Backend API errors (API-001 to API-099)
	ErrCodeAPIRequestFailed ErrorCode = "API-001"
	ErrCodeAPIUnreachable   ErrorCode = "API-002"
	ErrCodeAPIDecode        ErrorCode = "API-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigRead    ErrorCode = "CONFIG-002"
	ErrCodeConfigWrite   ErrorCode = "CONFIG-003"
)

// HISError represents an enhanced error with code, suggestions, and documentation
type HISError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *HISError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *HISError) Unwrap() error {
	return e.Cause
}

// New creates a new HISError
func New(code ErrorCode, message string) *HISError {
	return &HISError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new HISError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *HISError {
	return &HISError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *HISError) WithSuggestion(suggestion string) *HISError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *HISError) WithSuggestions(suggestions ...string) *HISError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *HISError) WithDocs(url string) *HISError {
	e.DocsURL = url
	return e
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// HasCode reports whether err (or anything it wraps) is a HISError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var hisErr *HISError
	if As(err, &hisErr) {
		return hisErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first HISError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var hisErr *HISError
	if As(err, &hisErr) {
		return hisErr.Code
	}
	return ""
}

// Common error constructors for frequently used errors

// NewNotLoggedInError creates an error for commands that need an active session
func NewNotLoggedInError(cause error) *HISError {
	return Wrap(ErrCodeSessionNotFound, "no active session for this terminal", cause).
		WithSuggestion("Run 'hisctl login' to sign in").
		WithSuggestion("Set HIS_SESSION_SCOPE to reuse a session from another terminal")
}

// NewSessionExpiredError creates an error for a session rejected by the backend
func NewSessionExpiredError(cause error) *HISError {
	return Wrap(ErrCodeSessionExpired, "session expired", cause).
		WithSuggestion("Your session has expired. Please sign in again with 'hisctl login'")
}

// NewInvalidCredentialsError creates a login failure error.
// message is the backend's explanation; an empty message gets the default text.
func NewInvalidCredentialsError(message string, cause error) *HISError {
	if message == "" {
		message = "Invalid email or password"
	}
	return Wrap(ErrCodeAuthInvalidCredentials, message, cause).
		WithSuggestion("Sign in with your email address or patient ID")
}

// NewAlreadyRegisteredError creates the signup error for a duplicate email
func NewAlreadyRegisteredError(cause error) *HISError {
	return Wrap(ErrCodeAuthAlreadyRegistered,
		"This email is already registered. Please use a different email or sign in.", cause).
		WithSuggestion("Run 'hisctl login' if you already have an account")
}

// NewStorageError creates a session storage failure error
func NewStorageError(backend string, cause error) *HISError {
	return Wrap(ErrCodeSessionStorage, fmt.Sprintf("session storage (%s) failed", backend), cause).
		WithSuggestion("Check the session.backend setting with 'hisctl config view'").
		WithSuggestion("Run 'hisctl logout' to reset the stored session")
}

// NewCorruptSessionError creates an error for a persisted session that cannot be decoded
func NewCorruptSessionError(backend string, cause error) *HISError {
	return Wrap(ErrCodeSessionCorrupt, fmt.Sprintf("stored session in %s storage is corrupt", backend), cause).
		WithSuggestion("The session was cleared; run 'hisctl login' to sign in again")
}

// NewAPIUnreachableError creates an error for a backend that could not be contacted
func NewAPIUnreachableError(baseURL string, cause error) *HISError {
	return Wrap(ErrCodeAPIUnreachable, fmt.Sprintf("hospital API unreachable at %s", baseURL), cause).
		WithSuggestion("Check that the backend is running").
		WithSuggestion("Set HIS_API_BASE_URL or api.base_url to the correct address")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *HISError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'hisctl config view' to inspect the effective configuration").
		WithSuggestion("Run 'hisctl config path' to locate the configuration file")
}
