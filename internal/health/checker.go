// Package health runs diagnostics against the pieces hisctl depends on:
// the backend API, the session storage and the current session.
//
//	manager := health.NewManager(clock)
//	manager.AddChecker(health.NewBackendChecker(baseURL, nil))
//	manager.AddChecker(health.NewStorageChecker(storage))
//
//	report := manager.Check(ctx)
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "backend-api".
	Name() string

	// Check must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	StatusHealthy Status = "healthy"

	// StatusDegraded means hisctl works with reduced functionality.
	StatusDegraded Status = "degraded"

	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Symbol returns the glyph used in terminal reports.
func (s Status) Symbol() string {
	switch s {
	case StatusHealthy:
		return "✓"
	case StatusDegraded:
		return "!"
	default:
		return "✗"
	}
}

// Result is the outcome of one check.
type Result struct {
	Name       string         `json:"name"`
	Status     Status         `json:"status"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Latency    time.Duration  `json:"latency"`
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithSuggestion sets the remediation hint shown under a failed check.
func (r *Result) WithSuggestion(s string) *Result {
	r.Suggestion = s
	return r
}

// Healthy creates a healthy result.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
