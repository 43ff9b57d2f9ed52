// Package gateway is the single HTTP client for the hospital backend. It
// attaches the session token to every request and turns a 401 into one
// coalesced session expiry and redirect to the login view.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/hospital-is/hisctl/internal/log"
	"github.com/hospital-is/hisctl/internal/metrics"
	"github.com/hospital-is/hisctl/internal/navigation"
	"github.com/hospital-is/hisctl/internal/telemetry"
)

// Defaults.
const (
	DefaultBaseURL    = "http://localhost:3000/api"
	DefaultLoginPath  = "/auth/login"
	DefaultSignupPath = "/auth/signup"
	DefaultTimeout    = 30 * time.Second
)

// SessionSource is the part of the session store the gateway uses.
type SessionSource interface {
	Token() string
	Expire(ctx context.Context) error
}

// Navigator is the part of the navigation port the gateway uses.
type Navigator interface {
	Current() navigation.Location
	Replace(loc navigation.Location)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	LoginPath  string
	SignupPath string

	RedirectDelay    time.Duration
	RedirectCooldown time.Duration

	HTTPClient *http.Client
	Clock      clockwork.Clock
	Logger     *log.Logger
	Metrics    *metrics.Metrics
	UserAgent  string
}

// Client sends requests to the backend.
type Client struct {
	baseURL    string
	loginPath  string
	signupPath string
	userAgent  string
	http       *http.Client
	logger     *log.Logger
	metrics    *metrics.Metrics
	guard      *RedirectGuard

	session SessionSource
	nav     Navigator
}

// New creates a client. The session and navigator are attached afterwards
// with UseSession and UseNavigator, since the store needs the client to log
// in.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.SignupPath == "" {
		cfg.SignupPath = DefaultSignupPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "hisctl"
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		loginPath:  cfg.LoginPath,
		signupPath: cfg.SignupPath,
		userAgent:  userAgent,
		http:       httpClient,
		logger:     logger.WithComponent("gateway"),
		metrics:    cfg.Metrics,
		guard:      NewRedirectGuard(cfg.Clock, cfg.RedirectDelay, cfg.RedirectCooldown),
	}
}

// UseSession attaches the token source and expiry target.
func (c *Client) UseSession(s SessionSource) {
	c.session = s
}

// UseNavigator attaches the location the 401 redirect acts on. Without one
// a 401 still expires the session.
func (c *Client) UseNavigator(n Navigator) {
	c.nav = n
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Guard exposes the redirect slot.
func (c *Client) Guard() *RedirectGuard {
	return c.guard
}

// Close cancels a pending redirect sequence.
func (c *Client) Close() {
	c.guard.Stop()
}

// Response is a successful backend response with its body read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Do sends a request to path under the base URL. body may be nil, an
// io.Reader, a []byte or any JSON-encodable value.
//
// A non-2xx status returns *APIError. Transport failures are returned as
// produced by net/http. A 401 additionally starts the session-expiry
// sequence unless it came from the login endpoint or the login view.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	ctx, span := telemetry.StartRequestSpan(ctx, method, path)
	defer span.End()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRequest(method, 0, time.Since(start))
		c.logger.DebugContext(ctx, "request failed", "method", method, "path", path, "error", err.Error())
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(method, resp.StatusCode, time.Since(start))
	telemetry.RecordStatus(span, resp.StatusCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.DebugContext(ctx, "request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(method, path, resp.StatusCode, data)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.session != nil && !c.isLoginEndpoint(path) {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) isLoginEndpoint(path string) bool {
	return strings.Contains(path, c.loginPath)
}

func (c *Client) onLoginView() bool {
	return c.nav != nil && c.nav.Current().Path == navigation.LoginPath
}

// handleUnauthorized runs the expiry sequence: claim the redirect slot,
// expire the session, then redirect after the delay.
func (c *Client) handleUnauthorized(ctx context.Context, path string) {
	switch {
	case c.isLoginEndpoint(path):
		c.metrics.RecordUnauthorized("login_endpoint")
		return
	case c.onLoginView():
		c.metrics.RecordUnauthorized("on_login_view")
		return
	}

	if !c.guard.Trigger(c.redirectToLogin) {
		c.metrics.RecordUnauthorized("coalesced")
		return
	}
	c.metrics.RecordUnauthorized("redirect")
	c.logger.WarnContext(ctx, "backend rejected session", "path", path)

	if c.session != nil {
		if err := c.session.Expire(context.WithoutCancel(ctx)); err != nil {
			c.logger.WithError(err).Error("failed to clear expired session")
		}
	}
}

func (c *Client) redirectToLogin() {
	if c.nav == nil || c.onLoginView() {
		return
	}
	c.metrics.RecordRedirect("gateway")
	c.nav.Replace(navigation.ExpiredLoginLocation())
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}
