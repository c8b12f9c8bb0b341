package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for doctest.
// Invoked without a subcommand it behaves like "doctest run".
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctest [paths...]",
		Short: "Run code examples embedded in documentation comments",
		Long: `doctest extracts @example blocks from /** ... */ documentation comments
in JavaScript and TypeScript sources, turns each one into a standalone
program that can use the exports of its file, runs it in its own
interpreter process and reports which examples pass.

Paths may be files or directories; directories are scanned recursively.
With no paths the current directory is scanned.`,
		Version:      Version,
		Args:         cobra.ArbitraryArgs,
		RunE:         runCommand,
		SilenceUsage: true,
		// main prints the error once; failing examples are already reported
		SilenceErrors: true,
	}

	addRunFlags(cmd)

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
