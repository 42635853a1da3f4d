package commands

import (
	"github.com/spf13/cobra"

	"github.com/evghenin/moldova-banking/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "moldbank",
		Short:   "Moldovan bank statement import and reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newRatesCommand())

	return rootCmd
}
