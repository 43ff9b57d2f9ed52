package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/navigation"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var whoamiJSON bool

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "output the user record as JSON")

	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := withTimeout(cmd.Context(), a.cfg)
	defer cancel()

	snap, err := a.requireSession(ctx)
	if err != nil {
		return err
	}
	user := snap.User

	if whoamiJSON {
		data, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", user.DisplayName())
	fmt.Fprintf(w, "Email:\t%s\n", user.Email)
	fmt.Fprintf(w, "Role:\t%s\n", user.Role.Label())
	if user.Specialization != "" {
		fmt.Fprintf(w, "Specialization:\t%s\n", user.Specialization)
	}
	if user.Department != "" {
		fmt.Fprintf(w, "Department:\t%s\n", user.Department)
	}
	if user.PatientID != "" {
		fmt.Fprintf(w, "Patient ID:\t%s\n", user.PatientID)
	}
	fmt.Fprintf(w, "Dashboard:\t%s\n", navigation.DashboardFor(user.Role).Title())
	fmt.Fprintf(w, "Storage:\t%s\n", a.storage.Name())
	return w.Flush()
}
