package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospital-is/hisctl/internal/session"
)

func TestIsInteractive(t *testing.T) {
	// Depends on how the tests are run; only check it does not panic.
	_ = IsInteractive()
}

func TestShouldPromptDisabledInCI(t *testing.T) {
	for _, envVar := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		t.Run(envVar, func(t *testing.T) {
			t.Setenv(envVar, "true")
			assert.False(t, ShouldPrompt())
		})
	}
}

func TestPromptsSkipCompleteInput(t *testing.T) {
	creds, err := PromptForCredentials(Credentials{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", creds.Email)

	req := session.SignupRequest{Name: "A", Email: "a@b.com", Password: "longenough", ConfirmPassword: "longenough"}
	got, err := PromptForSignup(req)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestFieldValidators(t *testing.T) {
	assert.Error(t, required("email")("  "))
	assert.NoError(t, required("email")("a@b.com"))

	assert.EqualError(t, minLength(8)("short"), "must be at least 8 characters")
	assert.NoError(t, minLength(8)("12345678"))
}
