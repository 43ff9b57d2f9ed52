package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospital-is/hisctl/internal/config"
	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/exitcode"
	"github.com/hospital-is/hisctl/internal/log"
	"github.com/hospital-is/hisctl/internal/metrics"
	"github.com/hospital-is/hisctl/internal/session"
)

// backend is a minimal hospital API.
func backend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"t1","user":{"id":"d1","email":"` + body.Email + `","name":"Dr. Rao","role":"doctor"}}`))
	})
	mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name, Email, Role string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email == "taken@example.com" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"User already exists"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"t2","user":{"id":"p1","email":"` + body.Email + `","name":"` + body.Name + `","role":"` + body.Role + `"}}`))
	})
	mux.HandleFunc("GET /lab/requests", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"r1","test":"CBC"}]`))
	})
	mux.HandleFunc("GET /expired", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// isolate gives the test its own home directory, session scope and backend.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HIS_SESSION_SCOPE", "test")
	t.Setenv("CI", "true")
	t.Setenv("HIS_API_BASE_URL", backend(t).URL)
	return home
}

func resetFlags() {
	configPath, apiURL, logLevel, metricsAddr = "", "", "", ""
	loginEmail, loginPassword, loginPasswordStdin = "", "", false
	signupName, signupEmail, signupPassword, signupConfirm = "", "", "", ""
	whoamiJSON, resolveJSON = false, false
	requestData, requestInclude = "", false
	configInitForce = false
	versionJSON, versionVerbose = false, false
	doctorJSON = false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"login", "signup", "logout", "whoami", "request", "routes", "resolve", "ui", "config", "version", "doctor"}
	got := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "missing command %s", name)
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	home := isolate(t)

	out, err := execute(t, "login", "--email", "rao@his.org", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Dr. Rao (Doctor)")
	assert.FileExists(t, filepath.Join(home, ".hisctl", "sessions", "test.json"))

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "rao@his.org")
	assert.Contains(t, out, "Doctor Dashboard")

	out, err = execute(t, "whoami", "--json")
	require.NoError(t, err)
	var user map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "doctor", user["role"])

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	_, err = execute(t, "whoami")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSessionNotFound, errors.CodeOf(err))
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
}

func TestLoginPasswordFromStdin(t *testing.T) {
	isolate(t)

	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("secret123\n"))
	rootCmd.SetArgs([]string{"login", "--email", "rao@his.org", "--password-stdin"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Signed in")
}

func TestLoginRejected(t *testing.T) {
	isolate(t)

	_, err := execute(t, "login", "--email", "rao@his.org", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthInvalidCredentials, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
}

func TestLoginNeedsCredentialsWhenNotInteractive(t *testing.T) {
	isolate(t)

	_, err := execute(t, "login", "--email", "rao@his.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required when not running interactively")
}

func TestLoginBackendUnreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	t.Setenv("HIS_API_BASE_URL", srv.URL)

	_, err := execute(t, "login", "--email", "a@b.com", "--password", "secret123")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAPIUnreachable, errors.CodeOf(err))
	assert.Equal(t, exitcode.NetworkError, exitcode.DetermineExitCode(err))
}

func TestSignup(t *testing.T) {
	isolate(t)

	out, err := execute(t, "signup", "--name", "Asha", "--email", "asha@example.com",
		"--password", "longenough", "--confirm-password", "longenough")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Asha")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Patient")
}

func TestSignupErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{
			name: "passwords differ",
			args: []string{"--name", "A", "--email", "a@example.com", "--password", "longenough", "--confirm-password", "different"},
			code: errors.ErrCodeAuthPasswordMismatch,
		},
		{
			name: "password too short",
			args: []string{"--name", "A", "--email", "a@example.com", "--password", "short", "--confirm-password", "short"},
			code: errors.ErrCodeAuthPasswordTooShort,
		},
		{
			name: "already registered",
			args: []string{"--name", "A", "--email", "taken@example.com", "--password", "longenough", "--confirm-password", "longenough"},
			code: errors.ErrCodeAuthAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := execute(t, append([]string{"signup"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestRequest(t *testing.T) {
	isolate(t)
	_, err := execute(t, "login", "--email", "rao@his.org", "--password", "secret123")
	require.NoError(t, err)

	out, err := execute(t, "request", "get", "lab/requests", "--include")
	require.NoError(t, err)
	assert.Contains(t, out, "HTTP 200 OK")
	assert.Contains(t, out, `"test": "CBC"`)
}

func TestRequestValidatesArguments(t *testing.T) {
	isolate(t)

	_, err := execute(t, "request", "TRACE", "/lab")
	assert.ErrorContains(t, err, "method must be one of")

	_, err = execute(t, "request", "POST", "/lab", "--data", "{not json")
	assert.ErrorContains(t, err, "--data must be JSON")
}

func TestRequest401EndsSession(t *testing.T) {
	home := isolate(t)
	_, err := execute(t, "login", "--email", "rao@his.org", "--password", "secret123")
	require.NoError(t, err)

	_, err = execute(t, "request", "GET", "/expired")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSessionExpired, errors.CodeOf(err))
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))

	_, statErr := os.Stat(filepath.Join(home, ".hisctl", "sessions", "test.json"))
	assert.True(t, os.IsNotExist(statErr), "session file should be removed")

	_, err = execute(t, "whoami")
	assert.Equal(t, errors.ErrCodeSessionNotFound, errors.CodeOf(err))
}

func TestLoginRecoversFromCorruptSession(t *testing.T) {
	home := isolate(t)
	file := filepath.Join(home, ".hisctl", "sessions", "test.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o700))
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	out, err := execute(t, "login", "--email", "rao@his.org", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Dr. Rao")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "rao@his.org")
}

func TestWhoamiWithCorruptSessionIsSignedOut(t *testing.T) {
	home := isolate(t)
	file := filepath.Join(home, ".hisctl", "sessions", "test.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o700))
	require.NoError(t, os.WriteFile(file, []byte("garbage"), 0o600))

	_, err := execute(t, "whoami")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSessionNotFound, errors.CodeOf(err))
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.NoFileExists(t, file)
}

func TestResolve(t *testing.T) {
	isolate(t)

	out, err := execute(t, "resolve", "/lab", "--json")
	require.NoError(t, err)
	var res resolutionView
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "lab", res.View)
	assert.Equal(t, "blocked", res.Outcome)
	assert.Equal(t, "to_login", res.Redirect)
	assert.Equal(t, "/login", res.Target)

	_, err = execute(t, "login", "--email", "rao@his.org", "--password", "secret123")
	require.NoError(t, err)

	out, err = execute(t, "resolve", "/")
	require.NoError(t, err)
	assert.Contains(t, out, "Doctor Dashboard")
	assert.Contains(t, out, "render")

	out, err = execute(t, "resolve", "/login")
	require.NoError(t, err)
	assert.Contains(t, out, "to_dashboard → /")
}

func TestRoutes(t *testing.T) {
	out, err := execute(t, "routes")
	require.NoError(t, err)
	assert.Contains(t, out, "/admin/doctors")
	assert.Contains(t, out, "/doctor/consultation/")
	assert.Contains(t, out, "prefix")
	assert.Contains(t, out, "any signed-in role")
}

func TestConfigCommands(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".hisctl", "config.yaml")

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	out, err = execute(t, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "defaults (no config file)")
	assert.Contains(t, out, "backend: file")

	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init")
	assert.Equal(t, errors.ErrCodeConfigWrite, errors.CodeOf(err))

	out, err = execute(t, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "# source: "+path)
}

func TestInvalidConfigIsUsageError(t *testing.T) {
	isolate(t)
	t.Setenv("HIS_SESSION_BACKEND", "floppy")

	_, err := execute(t, "whoami")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestCommandErrorsAreCounted(t *testing.T) {
	isolate(t)
	counter := metrics.GetDefault().Errors.WithLabelValues(string(errors.ErrCodeSessionNotFound), "whoami")
	before := testutil.ToFloat64(counter)

	_, err := execute(t, "whoami")
	require.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	uncoded := metrics.GetDefault().Errors.WithLabelValues(uncodedError, "request")
	before = testutil.ToFloat64(uncoded)
	_, err = execute(t, "request", "FETCH", "/lab")
	require.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(uncoded))
}

func TestSetupLoggingInstallsProcessLogger(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	logger, cleanup, err := setupLogging(cfg, false)
	require.NoError(t, err)
	defer cleanup()

	assert.Same(t, logger, log.DefaultLogger())
	assert.Equal(t, log.LevelDebug, logger.Config().Level)
	assert.True(t, logger.Config().AddSource)

	cfg.Logging.Level = "warn"
	logger, cleanup2, err := setupLogging(cfg, false)
	require.NoError(t, err)
	defer cleanup2()
	assert.False(t, logger.Config().AddSource)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hisctl "))
}

func TestDoctor(t *testing.T) {
	isolate(t)

	out, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "backend-api")
	assert.Contains(t, out, "not signed in")
	assert.Contains(t, out, "Overall:")
	assert.Contains(t, out, "degraded")

	_, err = execute(t, "login", "--email", "rao@his.org", "--password", "secret123")
	require.NoError(t, err)

	out, err = execute(t, "doctor", "--json")
	require.NoError(t, err)
	var report struct {
		Status  string `json:"status"`
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "healthy", report.Status)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "session", report.Results[2].Name)
}

func TestDoctorBackendDown(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	t.Setenv("HIS_API_BASE_URL", srv.URL)

	out, err := execute(t, "doctor")
	require.Error(t, err)
	assert.Contains(t, out, "is unreachable")
	assert.Contains(t, out, "unhealthy")
}
