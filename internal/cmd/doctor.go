package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/health"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the backend, session storage and current session",
	Long: `Run diagnostics for this terminal.

Checks include:
  • Backend API reachability (api.base_url)
  • Session storage backend (memory, file or redis)
  • Current session and token expiry

Examples:
  hisctl doctor
  hisctl doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorJSON bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output the report as JSON")

	rootCmd.AddCommand(doctorCmd)
}

var (
	doctorStyles = map[health.Status]lipgloss.Style{
		health.StatusHealthy:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		health.StatusDegraded:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		health.StatusUnhealthy: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	doctorMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := withTimeout(cmd.Context(), a.cfg)
	defer cancel()

	// A storage failure is reported by the storage check below.
	if err := a.initialize(ctx); err != nil {
		a.logger.WithError(err).Debug("session restore failed during diagnostics")
	}

	timeout := a.cfg.API.Timeout
	if timeout <= 0 {
		timeout = health.DefaultTimeout
	}
	manager := health.NewManager(nil).WithTimeout(timeout)
	manager.AddChecker(health.NewBackendChecker(a.gateway.BaseURL(), &http.Client{Timeout: timeout}))
	manager.AddChecker(health.NewStorageChecker(a.storage))
	manager.AddChecker(health.NewSessionChecker(a.store, nil))

	report := manager.Check(ctx)
	for _, r := range report.Results {
		a.logger.Debug("health check", "check", r.Name, "status", r.Status.String(), "latency", r.Latency)
	}

	out := cmd.OutOrStdout()
	if doctorJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		for _, r := range report.Results {
			style := doctorStyles[r.Status]
			fmt.Fprintf(out, "%s %-16s %s\n", style.Render(r.Status.Symbol()), r.Name, r.Message)
			if r.Suggestion != "" && r.Status != health.StatusHealthy {
				fmt.Fprintf(out, "  %s\n", doctorMuted.Render("→ "+r.Suggestion))
			}
		}
		fmt.Fprintf(out, "\nOverall: %s\n", doctorStyles[report.Status].Render(report.Status.String()))
	}

	if report.Status == health.StatusUnhealthy {
		return fmt.Errorf("diagnostics found unhealthy checks")
	}
	return nil
}
