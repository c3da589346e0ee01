// Package parser turns bank-statement exports into normalized transactions.
// It decodes bytes of unknown encoding, resolves column roles from free-form
// headers and parses each row independently, skipping rows it cannot read.
package parser

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/normalizer"
)

// ParsedRow is a normalized statement transaction. Negative amounts are
// outflows and positive amounts are inflows.
type ParsedRow struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Line        int             `json:"line"` // 1-based source line
}

// ParseResult contains the rows of a statement and how it was read.
type ParseResult struct {
	Rows        []ParsedRow   `json:"rows"`
	TotalRows   int           `json:"total_rows"`
	SkippedRows int           `json:"skipped_rows"`
	Skips       []RowSkip     `json:"skips,omitempty"`
	Encoding    string        `json:"encoding"`
	Delimiter   string        `json:"delimiter,omitempty"`
	Headers     []string      `json:"headers"`
	Mapping     ColumnMapping `json:"mapping"`
	Fingerprint string        `json:"fingerprint,omitempty"`
}

// ParserConfig configures how statements are read.
type ParserConfig struct {
	EncodingHint      string   // tried before FallbackEncodings
	FallbackEncodings []string // IANA names, tried in order
	Delimiter         rune     // 0 = detect
	HeaderRowIndex    int      // 0-based header row, -1 = detect
	DateLayouts       []string // nil = normalizer.DefaultDateLayouts
}

// DefaultConfig returns a parser config with detection enabled.
func DefaultConfig() ParserConfig {
	return ParserConfig{
		FallbackEncodings: DefaultFallbackEncodings,
		HeaderRowIndex:    -1,
	}
}

// StatementParser reads statement exports. It holds no mutable state and is
// safe for concurrent use.
type StatementParser struct {
	config ParserConfig
	logger *slog.Logger
}

// NewStatementParser creates a parser with the given configuration.
func NewStatementParser(config ParserConfig, logger *slog.Logger) *StatementParser {
	if logger == nil {
		logger = slog.Default()
	}
	if config.FallbackEncodings == nil {
		config.FallbackEncodings = DefaultFallbackEncodings
	}
	return &StatementParser{config: config, logger: logger}
}

// WithEncodingHint returns a copy of the parser that tries hint first. An
// empty hint returns p unchanged.
func (p *StatementParser) WithEncodingHint(hint string) *StatementParser {
	if hint == "" {
		return p
	}
	cp := *p
	cp.config.EncodingHint = hint
	return &cp
}

// ParseTable parses a delimited statement and returns its rows in input
// order. An empty slice is a valid result.
func (p *StatementParser) ParseTable(raw []byte) ([]ParsedRow, error) {
	result, err := p.Parse(raw)
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}

// Parse parses a delimited statement and reports skipped rows alongside the
// parsed ones. It fails only with a *DecodeError or a *SchemaError.
func (p *StatementParser) Parse(raw []byte) (*ParseResult, error) {
	dec, err := p.decode(raw)
	if err != nil {
		return nil, err
	}

	mapping, err := ResolveColumns(dec.layout.Headers)
	if err != nil {
		return nil, err
	}

	records, readSkips := readRecords(dec.text[dec.layout.DataOffset:], dec.layout.Delimiter, dec.layout.HeaderLine())

	result := p.parseRecords(records, mapping)
	result.TotalRows += len(readSkips)
	result.SkippedRows += len(readSkips)
	if len(readSkips) > 0 {
		result.Skips = append(result.Skips, readSkips...)
		slices.SortStableFunc(result.Skips, func(a, b RowSkip) int { return cmp.Compare(a.Line, b.Line) })
	}
	result.Encoding = dec.encoding
	result.Delimiter = string(dec.layout.Delimiter)
	result.Headers = dec.layout.Headers
	result.Fingerprint = dec.layout.Fingerprint

	p.logger.Debug("statement parsed",
		"encoding", result.Encoding,
		"delimiter", result.Delimiter,
		"total_rows", result.TotalRows,
		"parsed_rows", len(result.Rows),
		"skipped_rows", result.SkippedRows,
	)
	return result, nil
}

// parseRecords applies the row rules to every record; failures are recorded
// as skips and never abort the batch.
func (p *StatementParser) parseRecords(records []Record, mapping ColumnMapping) *ParseResult {
	result := &ParseResult{
		Rows:      make([]ParsedRow, 0, len(records)),
		TotalRows: len(records),
		Mapping:   mapping,
	}

	amountDialect := columnDialect(records, mapping.Amount, mapping.Debit, mapping.Credit)

	for _, rec := range records {
		row, skip := p.parseRecord(rec, mapping, amountDialect)
		if skip != nil {
			p.logger.Debug("skipping row", "line", skip.Line, "column", skip.Column, "reason", skip.Reason)
			result.Skips = append(result.Skips, *skip)
			result.SkippedRows++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

func (p *StatementParser) parseRecord(rec Record, mapping ColumnMapping, dialect normalizer.Dialect) (ParsedRow, *RowSkip) {
	dateStr := rec.Field(mapping.Date)
	date, err := normalizer.ParseDate(dateStr, p.config.DateLayouts)
	if err != nil {
		return ParsedRow{}, &RowSkip{Line: rec.Line, Column: string(RoleDate), Reason: "invalid date", RawData: dateStr}
	}

	desc := normalizer.CleanDescription(rec.Field(mapping.Description))
	if desc == "" {
		return ParsedRow{}, &RowSkip{Line: rec.Line, Column: string(RoleDescription), Reason: "missing description"}
	}

	var amount decimal.Decimal
	if mapping.Amount >= 0 {
		raw := rec.Field(mapping.Amount)
		amount, err = normalizer.ParseAmount(raw, dialect)
		if err != nil {
			return ParsedRow{}, &RowSkip{Line: rec.Line, Column: string(RoleAmount), Reason: amountReason(err), RawData: raw}
		}
	} else {
		debit, skip := splitCell(rec, mapping.Debit, RoleDebit, dialect)
		if skip != nil {
			return ParsedRow{}, skip
		}
		credit, skip := splitCell(rec, mapping.Credit, RoleCredit, dialect)
		if skip != nil {
			return ParsedRow{}, skip
		}
		amount = credit.Sub(debit)
	}

	if amount.IsZero() {
		return ParsedRow{}, &RowSkip{Line: rec.Line, Column: string(RoleAmount), Reason: "zero amount"}
	}

	return ParsedRow{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Line:        rec.Line,
	}, nil
}

// splitCell reads one side of a debit/credit pair as a magnitude. Empty
// cells count as zero; banks that sign their debit column negative still
// produce an outflow.
func splitCell(rec Record, idx int, role Role, dialect normalizer.Dialect) (decimal.Decimal, *RowSkip) {
	raw := rec.Field(idx)
	v, err := normalizer.ParseAmount(raw, dialect)
	if errors.Is(err, normalizer.ErrEmptyAmount) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, &RowSkip{Line: rec.Line, Column: string(role), Reason: amountReason(err), RawData: raw}
	}
	return v.Abs(), nil
}

func amountReason(err error) string {
	if errors.Is(err, normalizer.ErrEmptyAmount) {
		return "missing amount"
	}
	return "invalid amount"
}

// columnDialect votes over every value of the given columns.
func columnDialect(records []Record, columns ...int) normalizer.Dialect {
	var samples []string
	for _, rec := range records {
		for _, c := range columns {
			if v := rec.Field(c); v != "" {
				samples = append(samples, v)
			}
		}
	}
	return normalizer.DetectDialect(samples)
}
