package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/session"
	"github.com/hospital-is/hisctl/internal/tui"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a patient account and sign in",
	Long: `Register a new patient account. Staff accounts are created by an
administrator and cannot be registered here.

On success the new account is signed in for this terminal.`,
	Example: `  hisctl signup --name "Asha Verma" --email asha@example.com`,
	Args:    cobra.NoArgs,
	RunE:    runSignup,
}

var (
	signupName     string
	signupEmail    string
	signupPassword string
	signupConfirm  string
)

func init() {
	signupCmd.Flags().StringVarP(&signupName, "name", "n", "", "full name")
	signupCmd.Flags().StringVarP(&signupEmail, "email", "e", "", "email address")
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "password (at least 8 characters)")
	signupCmd.Flags().StringVar(&signupConfirm, "confirm-password", "", "password again")

	rootCmd.AddCommand(signupCmd)
}

func runSignup(cmd *cobra.Command, args []string) error {
	req := session.SignupRequest{
		Name:            strings.TrimSpace(signupName),
		Email:           strings.TrimSpace(signupEmail),
		Password:        signupPassword,
		ConfirmPassword: signupConfirm,
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("--name, --email, --password and --confirm-password are required when not running interactively")
		}
		var err error
		req, err = tui.PromptForSignup(req)
		if err != nil {
			return err
		}
	}

	a, err := newApp(cmd, appOptions{start: "/signup"})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := withTimeout(cmd.Context(), a.cfg)
	defer cancel()

	if err := a.initialize(ctx); err != nil {
		return err
	}

	user, err := a.store.Signup(ctx, req)
	if err != nil {
		var hisErr *errors.HISError
		if errors.As(err, &hisErr) {
			return err
		}
		if isTransport(err) {
			return errors.NewAPIUnreachableError(a.gateway.BaseURL(), err)
		}
		return errors.Wrap(errors.ErrCodeAuthSignupRejected, "signup failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s. Your patient account is ready and you are signed in.\n", user.DisplayName())
	return nil
}
