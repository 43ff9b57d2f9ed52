package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of this terminal",
	Long: `Remove the session kept for this terminal. The hospital API is not
contacted, so logging out works offline and is safe to repeat.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := withTimeout(cmd.Context(), a.cfg)
	defer cancel()

	if err := a.initialize(ctx); err != nil {
		return err
	}
	wasSignedIn := a.store.Snapshot().Authenticated()

	if err := a.store.Logout(ctx); err != nil {
		return err
	}

	if wasSignedIn {
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
	}
	return nil
}
