package health

import (
	"context"
	"fmt"
	"net/http"
)

// BackendChecker checks the backend base URL. Any HTTP answer below 500
// proves the API is reachable; authentication is not exercised.
type BackendChecker struct {
	baseURL string
	client  *http.Client
}

// NewBackendChecker creates a checker. A nil client uses http.DefaultClient.
func NewBackendChecker(baseURL string, client *http.Client) *BackendChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &BackendChecker{baseURL: baseURL, client: client}
}

// Name implements Checker.
func (c *BackendChecker) Name() string {
	return "backend-api"
}

// Check implements Checker.
func (c *BackendChecker) Check(ctx context.Context) *Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Unhealthy(fmt.Sprintf("invalid base URL: %v", err)).
			WithSuggestion("Fix api.base_url with 'hisctl config view'")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Unhealthy(fmt.Sprintf("%s is unreachable", c.baseURL)).
			WithDetail("error", err.Error()).
			WithSuggestion("Start the backend or point --api-url at a running instance")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Degraded(fmt.Sprintf("%s answered %d", c.baseURL, resp.StatusCode)).
			WithDetail("status_code", resp.StatusCode).
			WithSuggestion("Check the backend logs")
	}
	return Healthy(fmt.Sprintf("%s is reachable", c.baseURL)).
		WithDetail("status_code", resp.StatusCode)
}
