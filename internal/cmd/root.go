package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hisctl",
	Short: "Hospital Information System console",
	Long: `hisctl is the terminal client of the Hospital Information System.

It signs staff and patients in, keeps the session for the lifetime of the
terminal, and opens the role dashboards and department views in an
interactive console (hisctl ui). Every request to the hospital API carries
the session token; an expired session sends you back to the sign-in screen.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath  string
	apiURL      string
	logLevel    string
	metricsAddr string
)

// ExecuteContext runs the root command with ctx, which commands use for
// cancellation. Failures are counted by error code.
func ExecuteContext(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	recordCommandError(cmd, err)
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $HOME/.hisctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "hospital API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
}
