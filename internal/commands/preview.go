package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/categorization"
	importservice "github.com/FACorreiaa/finance-dashboard/internal/domain/import/service"
	"github.com/FACorreiaa/finance-dashboard/pkg/config"
)

// previewFlags are shared by preview and import.
type previewFlags struct {
	parserFlags
	categories  []string
	threshold   int
	user        string
	metricsPath string
}

func (f *previewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "encoding to try first (IANA name)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "field delimiter; detected when empty")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "available category (repeatable); defaults to the built-in list")
	cmd.Flags().IntVar(&f.threshold, "threshold", categorization.DefaultResolveThreshold, "minimum similarity (0-100) for mapping a suggestion onto an available category")
	cmd.Flags().StringVar(&f.user, "user", "", "user id the upload is archived under")
	cmd.Flags().StringVar(&f.metricsPath, "metrics-textfile", "", "write Prometheus metrics to this file")
}

func newPreviewCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var flags previewFlags

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Parse a statement and suggest a category per transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := InitDependencies(cfg, logger, flags.parserFlags)
			if err != nil {
				return err
			}

			preview, err := runPreview(cmd, deps, args[0], flags)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), preview)
		},
	}
	flags.register(cmd)

	return cmd
}

func runPreview(cmd *cobra.Command, deps *Dependencies, path string, flags previewFlags) (*importservice.Preview, error) {
	if flags.threshold < 0 || flags.threshold > 100 {
		return nil, fmt.Errorf("--threshold: %d is outside 0-100", flags.threshold)
	}
	deps.Suggester.WithThreshold(flags.threshold)

	userID := uuid.Nil
	if flags.user != "" {
		id, err := uuid.Parse(flags.user)
		if err != nil {
			return nil, fmt.Errorf("--user: %w", err)
		}
		userID = id
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	preview, err := deps.ImportService.Preview(cmd.Context(), importservice.PreviewInput{
		UserID:     userID,
		FileName:   filepath.Base(path),
		Data:       data,
		Categories: flags.categories,
	})

	if flags.metricsPath != "" {
		if werr := deps.Metrics.WriteTextfile(flags.metricsPath); werr != nil {
			deps.Logger.Warn("metrics not written", "path", flags.metricsPath, "error", werr)
		}
	}
	return preview, err
}
