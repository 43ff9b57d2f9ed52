package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/navigation"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the console's routes and who may open them",
	Long: `Print the route table in match order. The first matching route wins;
"any signed-in role" routes still reject unknown roles.`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PATTERN", "MATCH", "VIEW", "ROLES")

	for _, r := range navigation.DefaultTable {
		pattern := r.Pattern
		if pattern == "" {
			pattern = `""`
		}
		t.Row(pattern, r.Match.String(), r.View.Title(), rolesLabel(r))
	}

	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "%s and %s are public; any other path resolves to %q.\n",
		navigation.LoginPath, navigation.SignupPath, navigation.ViewNotFound.Title())
	return nil
}

func rolesLabel(r navigation.Route) string {
	if len(r.Roles) == 0 {
		return "any signed-in role"
	}
	labels := make([]string, len(r.Roles))
	for i, role := range r.Roles {
		labels[i] = string(role)
	}
	return strings.Join(labels, ", ")
}
