package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/finance-dashboard/internal/domain/import/service"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// csvRow is the flat CSV form of a parsed statement row.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Line        int    `csv:"line"`
}

// confirmedRow is the flat CSV form of a confirmed transaction.
type confirmedRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeParsedCSV(w io.Writer, rows []parser.ParsedRow) error {
	out := make([]*csvRow, len(rows))
	for i, row := range rows {
		out[i] = &csvRow{
			Date:        row.Date.Format(time.DateOnly),
			Description: row.Description,
			Amount:      row.Amount.StringFixed(2),
			Line:        row.Line,
		}
	}
	return gocsv.Marshal(&out, w)
}

// csvSink writes confirmed transactions as CSV.
type csvSink struct {
	w io.Writer
}

// SaveTransactions implements importservice.TransactionSink
func (s *csvSink) SaveTransactions(_ context.Context, _ uuid.UUID, txs []importservice.ConfirmedTransaction) error {
	out := make([]*confirmedRow, len(txs))
	for i, tx := range txs {
		out[i] = &confirmedRow{
			Date:        tx.Date.Format(time.DateOnly),
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Category:    tx.Category,
		}
	}
	if err := gocsv.Marshal(&out, s.w); err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}
	return nil
}

func writeSkips(w io.Writer, result *parser.ParseResult) {
	fmt.Fprintf(w, "parsed %d of %d rows (encoding %s", len(result.Rows), result.TotalRows, result.Encoding)
	if result.Delimiter != "" {
		fmt.Fprintf(w, ", delimiter %q", result.Delimiter)
	}
	fmt.Fprintln(w, ")")
	for _, skip := range result.Skips {
		fmt.Fprintf(w, "  skipped %s\n", skip)
	}
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
