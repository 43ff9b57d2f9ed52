package exitcode

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/gateway"
	"github.com/hospital-is/hisctl/internal/session"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"plain", fmt.Errorf("boom"), GeneralError},
		{"cancelled", fmt.Errorf("login: %w", context.Canceled), Interrupted},
		{"not logged in", errors.NewNotLoggedInError(nil), AuthError},
		{"invalid credentials", errors.NewInvalidCredentialsError("", nil), AuthError},
		{"storage failure", errors.NewStorageError("file", fmt.Errorf("disk")), GeneralError},
		{"unreachable", errors.NewAPIUnreachableError("http://x", fmt.Errorf("refused")), NetworkError},
		{"config", errors.NewConfigInvalidError("bad"), UsageError},
		{"401", &gateway.APIError{StatusCode: 401}, AuthError},
		{"500", &gateway.APIError{StatusCode: 500}, GeneralError},
		{"no session", fmt.Errorf("whoami: %w", session.ErrNoSession), AuthError},
		{"dial", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: fmt.Errorf("refused")}}, NetworkError},
		{"deadline", context.DeadlineExceeded, NetworkError},
		{"unknown command", fmt.Errorf(`unknown command "foo" for "hisctl"`), UsageError},
		{"required flag", fmt.Errorf(`required flag(s) "email" not set`), UsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	tests := map[int]string{
		Success:      "Success",
		GeneralError: "General error",
		AuthError:    "Authentication error",
		NetworkError: "Network error",
		Interrupted:  "Interrupted",
		42:           "Unknown error",
	}
	for code, want := range tests {
		if got := GetExitCodeDescription(code); got != want {
			t.Errorf("GetExitCodeDescription(%d) = %q, want %q", code, got, want)
		}
	}
}
