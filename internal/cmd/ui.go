package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/navigation"
	"github.com/hospital-is/hisctl/internal/telemetry"
	"github.com/hospital-is/hisctl/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive hospital console",
	Long: `Open the full-screen console. You land on your role's dashboard, or on
the sign-in screen when this terminal has no session.

Logs go to logging.file (default ~/.hisctl/logs/hisctl.log) while the
console owns the terminal.`,
	Example: `  hisctl ui
  hisctl ui --path /lab`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

var uiPath string

func init() {
	uiCmd.Flags().StringVar(&uiPath, "path", navigation.DashboardPath, "location to open first")

	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{logToFile: true, start: uiPath})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "ui")
	defer span.End()

	a.controller.Start()

	// Restoring runs alongside the program so the loading view is shown
	// while storage is read.
	go func() {
		if err := a.initialize(ctx); err != nil {
			a.logger.WithError(err).Error("Failed to restore session")
		}
	}()

	if err := tui.Run(ctx, a.store, a.controller, a.gateway); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.RecordSuccess(span)
	return nil
}
