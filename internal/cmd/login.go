package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/gateway"
	"github.com/hospital-is/hisctl/internal/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in for this terminal",
	Long: `Sign in with your email address (or patient ID) and password.

The session is kept for this terminal until you log out or the hospital API
rejects it. Missing credentials are prompted for when stdin is a terminal.`,
	Example: `  hisctl login --email dr.rao@hospital.org
  echo "$PASSWORD" | hisctl login --email dr.rao@hospital.org --password-stdin`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var (
	loginEmail         string
	loginPassword      string
	loginPasswordStdin bool
)

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "email address or patient ID")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prefer --password-stdin)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")

	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	creds := tui.Credentials{Email: strings.TrimSpace(loginEmail), Password: loginPassword}
	if loginPasswordStdin {
		pw, err := readSecret(cmd)
		if err != nil {
			return err
		}
		creds.Password = pw
	}

	if creds.Email == "" || creds.Password == "" {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("--email and a password are required when not running interactively")
		}
		var err error
		creds, err = tui.PromptForCredentials(creds)
		if err != nil {
			return err
		}
	}

	a, err := newApp(cmd, appOptions{start: "/login"})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := withTimeout(cmd.Context(), a.cfg)
	defer cancel()

	if err := a.initialize(ctx); err != nil {
		return err
	}

	user, err := a.store.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return loginError(a, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.DisplayName(), user.Role.Label())
	return nil
}

// loginError turns a rejected login into a coded error with the backend's
// explanation.
func loginError(a *app, err error) error {
	var hisErr *errors.HISError
	if errors.As(err, &hisErr) {
		return err
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return errors.NewInvalidCredentialsError(apiErr.Message, err)
	}
	if isTransport(err) {
		return errors.NewAPIUnreachableError(a.gateway.BaseURL(), err)
	}
	return err
}

// readSecret reads the first line of stdin.
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if in == nil {
		in = os.Stdin
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
