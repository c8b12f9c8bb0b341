package cmd

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command, which prints discovered examples
// without running them.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List the examples doctest would run",
		Long: `List every example found under the given paths with its name,
location and code. Nothing is executed; this is the same as "doctest run --dry-run".`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.DryRun = true
			return runDoctest(cmd.Context(), runParams{
				config: cfg,
				paths:  args,
				out:    cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().String("config", "", "Path to config file (default: .doctest/config.yaml)")
	cmd.Flags().Bool("markdown", false, "Also scan .md files for fenced example blocks")

	return cmd
}
