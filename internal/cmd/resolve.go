package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/navigation"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Show what the console would display at a path",
	Long: `Resolve a path against the current session without navigating or
contacting the hospital API. Useful for checking which roles can open a view.`,
	Example: `  hisctl resolve /lab
  hisctl resolve "/login?session_expired=true"`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var resolveJSON bool

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output the resolution as JSON")

	rootCmd.AddCommand(resolveCmd)
}

type resolutionView struct {
	Location string   `json:"location"`
	View     string   `json:"view"`
	Title    string   `json:"title"`
	Outcome  string   `json:"outcome"`
	Roles    []string `json:"roles,omitempty"`
	Redirect string   `json:"redirect"`
	Target   string   `json:"target,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
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

	res := navigation.Resolve(navigation.ParseLocation(args[0]), a.store.Snapshot(), navigation.DefaultTable)
	out := resolutionView{
		Location: res.Location.String(),
		View:     string(res.View),
		Title:    res.View.Title(),
		Outcome:  res.Outcome.String(),
		Redirect: res.Redirect.String(),
	}
	for _, r := range res.Roles {
		out.Roles = append(out.Roles, string(r))
	}
	if res.Redirect != navigation.RedirectNone {
		out.Target = res.Target.String()
	}

	if resolveJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal resolution: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Location:\t%s\n", out.Location)
	fmt.Fprintf(w, "View:\t%s (%s)\n", out.Title, out.View)
	fmt.Fprintf(w, "Outcome:\t%s\n", out.Outcome)
	if out.Target != "" {
		fmt.Fprintf(w, "Redirect:\t%s → %s\n", out.Redirect, out.Target)
	}
	return w.Flush()
}
