package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/parser"
)

func newBankCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bank FILE",
		Short: "Guess which bank exported a statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), parser.GuessBankName(data))
			return err
		},
	}
}
