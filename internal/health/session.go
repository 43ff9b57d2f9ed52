package health

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/hospital-is/hisctl/internal/session"
)

// StorageChecker verifies the session storage answers reads.
type StorageChecker struct {
	storage session.Storage
}

// NewStorageChecker creates a checker for storage.
func NewStorageChecker(storage session.Storage) *StorageChecker {
	return &StorageChecker{storage: storage}
}

// Name implements Checker.
func (c *StorageChecker) Name() string {
	return "session-storage"
}

// Check implements Checker.
func (c *StorageChecker) Check(ctx context.Context) *Result {
	_, present, err := c.storage.Get(ctx, session.TokenKey)
	if err != nil {
		return Unhealthy(fmt.Sprintf("%s storage failed: %v", c.storage.Name(), err)).
			WithDetail("backend", c.storage.Name()).
			WithSuggestion("Check session.backend and its connection settings")
	}
	return Healthy(fmt.Sprintf("%s storage is readable", c.storage.Name())).
		WithDetail("backend", c.storage.Name()).
		WithDetail("token_present", present)
}

// SessionSource exposes the current session.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// SessionChecker reports whether someone is signed in and whether the token
// is still valid. Being signed out is degraded, not unhealthy.
type SessionChecker struct {
	source SessionSource
	clock  clockwork.Clock
}

// NewSessionChecker creates a checker. A nil clock uses the real clock.
func NewSessionChecker(source SessionSource, clock clockwork.Clock) *SessionChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionChecker{source: source, clock: clock}
}

// Name implements Checker.
func (c *SessionChecker) Name() string {
	return "session"
}

// Check implements Checker.
func (c *SessionChecker) Check(_ context.Context) *Result {
	snap := c.source.Snapshot()
	if !snap.Authenticated() {
		return Degraded("not signed in").
			WithSuggestion("Run 'hisctl login'")
	}

	user := snap.User
	if !user.Role.IsKnown() {
		return Degraded(fmt.Sprintf("signed in with unrecognized role %q", user.Role)).
			WithDetail("email", user.Email).
			WithSuggestion("Contact an administrator")
	}

	result := Healthy(fmt.Sprintf("signed in as %s (%s)", user.DisplayName(), user.Role.Label())).
		WithDetail("email", user.Email).
		WithDetail("role", string(user.Role))

	if exp, ok := session.TokenExpiry(snap.Token); ok {
		result.WithDetail("expires_at", exp)
		if !c.clock.Now().Before(exp) {
			result.Status = StatusDegraded
			result.Message = fmt.Sprintf("token for %s expired at %s", user.Email, exp.Format("2006-01-02 15:04"))
			result.Suggestion = "Run 'hisctl login' again"
		}
	}
	return result
}
