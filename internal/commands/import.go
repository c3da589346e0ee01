package commands

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	importservice "github.com/FACorreiaa/finance-dashboard/internal/domain/import/service"
	"github.com/FACorreiaa/finance-dashboard/pkg/config"
)

func newImportCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var flags previewFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Preview a statement, accept every suggestion and write the transactions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := InitDependencies(cfg, logger, flags.parserFlags)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			deps.ImportService.WithTransactionSink(&csvSink{w: &buf})

			preview, err := runPreview(cmd, deps, args[0], flags)
			if err != nil {
				return err
			}

			result, err := deps.ImportService.Confirm(cmd.Context(), importservice.ConfirmInput{
				StatementID:  preview.StatementID,
				Transactions: acceptSuggestions(preview.Transactions),
			})
			if err != nil {
				return err
			}

			if err := writeOutput(cmd.OutOrStdout(), outPath, buf.Bytes()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "imported %d transactions (statement %s, %s)\n", result.Total, result.StatementID, result.Status)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write confirmed transactions to this CSV file instead of stdout")

	return cmd
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, data []byte) (err error) {
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func acceptSuggestions(items []importservice.ReviewItem) []importservice.ConfirmedTransaction {
	txs := make([]importservice.ConfirmedTransaction, len(items))
	for i, item := range items {
		txs[i] = importservice.ConfirmedTransaction{
			Date:        item.Date,
			Description: item.Description,
			Amount:      item.Amount,
			Category:    item.SuggestedCategory,
		}
	}
	return txs
}
