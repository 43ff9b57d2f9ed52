package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/config"
	"github.com/hospital-is/hisctl/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View hisctl configuration",
	Long: `Inspect the configuration stored at ~/.hisctl/config.yaml.

Every setting can be overridden with an HIS_ environment variable, using
underscores for nesting: HIS_API_BASE_URL, HIS_SESSION_BACKEND,
HIS_REDIRECT_DELAY and so on.

Examples:
  # View the effective configuration
  hisctl config view

  # Show configuration file path
  hisctl config path

  # Write a configuration file with the defaults
  hisctl config init
`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	Long:  `Display the configuration after defaults, the file and HIS_ overrides are applied. Secrets are masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	source := cfg.Path()
	if source == "" {
		source = "defaults (no config file)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", source, data)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return errors.New(errors.ErrCodeConfigWrite, fmt.Sprintf("%s already exists", path)).
			WithSuggestion("Use --force to overwrite it")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeConfigWrite, "failed to create configuration directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigWrite, fmt.Sprintf("failed to write %s", path), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func configFilePath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigRead, "cannot locate configuration directory", err)
	}
	return path, nil
}
