package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/finance-dashboard/internal/domain/import/service"
	"github.com/FACorreiaa/finance-dashboard/pkg/config"
)

func newParseCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var flags parserFlags
	var format string
	var metricsPath string

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a statement and print its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatCSV {
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}

			deps, err := InitDependencies(cfg, logger, flags)
			if err != nil {
				return err
			}
			return runParse(cmd, deps, args[0], format, metricsPath)
		},
	}

	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "encoding to try first (IANA name)")
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", "", "field delimiter; detected when empty")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or csv")
	cmd.Flags().StringVar(&metricsPath, "metrics-textfile", "", "write Prometheus metrics to this file")

	return cmd
}

func runParse(cmd *cobra.Command, deps *Dependencies, path, format, metricsPath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}
	return parseData(cmd, deps, path, data, format, metricsPath)
}

// parseData parses one statement and renders it; name only selects between
// the workbook and delimited readers.
func parseData(cmd *cobra.Command, deps *Dependencies, name string, data []byte, format, metricsPath string) error {
	deps.Metrics.ObserveBank(string(parser.GuessBankName(data)))

	var (
		result *parser.ParseResult
		err    error
	)
	if isWorkbook(name) {
		result, err = deps.Parser.ParseWorkbook(data)
	} else {
		result, err = deps.Parser.Parse(data)
	}

	if result != nil {
		deps.Metrics.ObserveImport(importservice.OutcomeFor(err), len(result.Rows), result.SkippedRows)
	} else {
		deps.Metrics.ObserveImport(importservice.OutcomeFor(err), 0, 0)
	}
	if metricsPath != "" {
		if werr := deps.Metrics.WriteTextfile(metricsPath); werr != nil {
			deps.Logger.Warn("metrics not written", "path", metricsPath, "error", werr)
		}
	}
	if err != nil {
		return err
	}

	writeSkips(cmd.ErrOrStderr(), result)

	if format == formatCSV {
		return writeParsedCSV(cmd.OutOrStdout(), result.Rows)
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
