package exitcode

import (
	"context"
	"net"
	"os"
	"strings"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/gateway"
	"github.com/hospital-is/hisctl/internal/session"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage or configuration
	UsageError = 2

	// AuthError indicates a rejected login or a missing or expired session
	AuthError = 5

	// NetworkError indicates the backend could not be reached
	NetworkError = 6

	// Interrupted indicates the command was cancelled (Ctrl+C)
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Typed errors are checked
// first; cobra's usage errors are only recognizable by their text.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if errors.Is(err, context.Canceled) {
		return Interrupted
	}

	switch code := errors.CodeOf(err); {
	case strings.HasPrefix(string(code), "AUTH-"), strings.HasPrefix(string(code), "SESSION-"):
		if code == errors.ErrCodeSessionStorage {
			return GeneralError
		}
		return AuthError
	case code == errors.ErrCodeAPIUnreachable:
		return NetworkError
	case strings.HasPrefix(string(code), "CONFIG-"):
		return UsageError
	}

	if errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, session.ErrNoSession) {
		return AuthError
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return NetworkError
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag") ||
		strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") ||
		strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or configuration)"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
