package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hospital-is/hisctl/internal/session"
)

// Credentials are what the login prompt collects.
type Credentials struct {
	Email    string
	Password string
}

// PromptForCredentials asks for whatever part of c is still empty.
func PromptForCredentials(c Credentials) (Credentials, error) {
	var fields []huh.Field
	if c.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email or patient ID").
			Validate(required("email")).
			Value(&c.Email))
	}
	if c.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(required("password")).
			Value(&c.Password))
	}
	if len(fields) == 0 {
		return c, nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return c, fmt.Errorf("prompt failed: %w", err)
	}
	c.Email = strings.TrimSpace(c.Email)
	return c, nil
}

// PromptForSignup completes a signup request interactively. Passwords are
// always asked for twice unless both were supplied.
func PromptForSignup(req session.SignupRequest) (session.SignupRequest, error) {
	var fields []huh.Field
	if req.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Full name").
			Validate(required("name")).
			Value(&req.Name))
	}
	if req.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Validate(required("email")).
			Value(&req.Email))
	}
	if req.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			Description(fmt.Sprintf("At least %d characters", session.MinPasswordLength)).
			EchoMode(huh.EchoModePassword).
			Validate(minLength(session.MinPasswordLength)).
			Value(&req.Password))
	}
	if req.ConfirmPassword == "" {
		fields = append(fields, huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Value(&req.ConfirmPassword))
	}
	if len(fields) == 0 {
		return req, nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return req, fmt.Errorf("prompt failed: %w", err)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	return req, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func minLength(n int) func(string) error {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
