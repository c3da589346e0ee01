// Package commands implements the statement CLI.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/finance-dashboard/pkg/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	if logger == nil {
		logger = slog.Default()
	}

	rootCmd := &cobra.Command{
		Use:     "statement",
		Short:   "Parse and categorize bank statement exports",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newParseCommand(cfg, logger),
		newBankCommand(),
		newPreviewCommand(cfg, logger),
		newImportCommand(cfg, logger),
		newArchiveCommand(cfg, logger),
	)

	return rootCmd
}
