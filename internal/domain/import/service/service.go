// Package service runs the statement upload workflow: a preview that parses
// the file and suggests categories, followed by a confirmation of the rows
// the user accepted.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/normalizer"
	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/parser"
	"github.com/FACorreiaa/finance-dashboard/pkg/metrics"
	"github.com/FACorreiaa/finance-dashboard/pkg/money"
	"github.com/FACorreiaa/finance-dashboard/pkg/storage"
)

const tracerName = "github.com/FACorreiaa/finance-dashboard/internal/domain/import/service"

// Statement statuses.
const (
	StatusPendingReview = "pending_review"
	StatusCompleted     = "completed"
)

var (
	ErrUnsupportedFile    = errors.New("only .csv and .xlsx statements are supported")
	ErrNoTransactions     = errors.New("no transactions found in statement")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// DefaultCategories are offered when the caller has none of its own.
var DefaultCategories = []string{
	"Alimentação", "Transporte", "Moradia", "Saúde",
	"Lazer", "Educação", "Compras", "Outros",
}

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// CategorizationInput is what a categorizer sees of a statement row.
type CategorizationInput struct {
	Description string
	Amount      decimal.Decimal
}

// Categorizer suggests one of available per input, "" for no suggestion.
type Categorizer interface {
	SuggestCategories(ctx context.Context, inputs []CategorizationInput, available []string) ([]string, error)
}

// Archive stores the raw upload.
type Archive interface {
	Save(ctx context.Context, userID, statementID uuid.UUID, filename, contentType string, r io.Reader) (*storage.FileInfo, error)
}

// TransactionSink receives confirmed transactions.
type TransactionSink interface {
	SaveTransactions(ctx context.Context, statementID uuid.UUID, txs []ConfirmedTransaction) error
}

// PreviewInput is an uploaded statement awaiting review.
type PreviewInput struct {
	UserID       uuid.UUID
	FileName     string
	Data         []byte
	EncodingHint string
	Categories   []string // nil = DefaultCategories
}

// ReviewItem is a parsed row with its suggested category.
type ReviewItem struct {
	TempID            int             `json:"temp_id"`
	Date              time.Time       `json:"date"`
	Description       string          `json:"description"`
	Merchant          string          `json:"merchant"`
	Amount            decimal.Decimal `json:"amount"`
	SuggestedCategory string          `json:"suggested_category,omitempty"`
}

// Preview is the reviewable view of an uploaded statement.
type Preview struct {
	StatementID         uuid.UUID         `json:"statement_id"`
	Status              string            `json:"status"`
	FileName            string            `json:"filename"`
	BankName            parser.BankGuess  `json:"bank_name"`
	Encoding            string            `json:"encoding"`
	PeriodStart         time.Time         `json:"period_start"`
	PeriodEnd           time.Time         `json:"period_end"`
	TotalTransactions   int               `json:"total_transactions"`
	SkippedRows         int               `json:"skipped_rows"`
	Skips               []parser.RowSkip  `json:"skips,omitempty"`
	TotalIncome         *money.Money      `json:"total_income"`
	TotalExpenses       *money.Money      `json:"total_expenses"`
	Transactions        []ReviewItem      `json:"transactions"`
	AvailableCategories []string          `json:"available_categories"`
	Archive             *storage.FileInfo `json:"archive,omitempty"`
}

// ConfirmedTransaction is a reviewed row the user accepted.
type ConfirmedTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
}

// ConfirmInput carries the accepted rows of a previewed statement.
type ConfirmInput struct {
	StatementID  uuid.UUID
	Transactions []ConfirmedTransaction
}

// ConfirmResult reports a completed import.
type ConfirmResult struct {
	StatementID uuid.UUID `json:"statement_id"`
	Status      string    `json:"status"`
	Total       int       `json:"total"`
}

// ImportService orchestrates statement previews and confirmations.
type ImportService struct {
	parser      *parser.StatementParser
	categorizer Categorizer     // Optional: nil skips suggestions
	archive     Archive         // Optional: nil skips archiving
	sink        TransactionSink // Optional: nil discards confirmed rows
	metrics     *metrics.Metrics
	currency    string
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewImportService creates a new import service
func NewImportService(p *parser.StatementParser, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		parser:   p,
		currency: money.BRL,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
	}
}

// WithCategorizer adds category suggestions to previews
func (s *ImportService) WithCategorizer(c Categorizer) *ImportService {
	s.categorizer = c
	return s
}

// WithArchive stores every previewed upload
func (s *ImportService) WithArchive(a Archive) *ImportService {
	s.archive = a
	return s
}

// WithTransactionSink hands confirmed transactions to sink
func (s *ImportService) WithTransactionSink(sink TransactionSink) *ImportService {
	s.sink = sink
	return s
}

// WithMetrics records import counters on m
func (s *ImportService) WithMetrics(m *metrics.Metrics) *ImportService {
	s.metrics = m
	return s
}

// WithCurrency sets the currency of preview totals
func (s *ImportService) WithCurrency(code string) *ImportService {
	s.currency = code
	return s
}

// Preview parses an uploaded statement and prepares it for review.
func (s *ImportService) Preview(ctx context.Context, in PreviewInput) (*Preview, error) {
	ctx, span := s.tracer.Start(ctx, "ImportService.Preview", trace.WithAttributes(
		attribute.String("statement.filename", in.FileName),
		attribute.Int("statement.size", len(in.Data)),
	))
	defer span.End()

	preview, outcome, err := s.preview(ctx, in)
	parsed, skipped := 0, 0
	if preview != nil {
		parsed, skipped = preview.TotalTransactions, preview.SkippedRows
	}
	s.metrics.ObserveImport(outcome, parsed, skipped)
	span.SetAttributes(attribute.String("statement.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("statement preview failed", "filename", in.FileName, "outcome", outcome, "error", err)
		return nil, err
	}

	s.logger.Info("statement previewed",
		"statement_id", preview.StatementID,
		"bank", preview.BankName,
		"transactions", preview.TotalTransactions,
		"skipped", preview.SkippedRows,
	)
	return preview, nil
}

func (s *ImportService) preview(ctx context.Context, in PreviewInput) (*Preview, string, error) {
	ext := strings.ToLower(filepath.Ext(in.FileName))
	contentType, ok := contentTypes[ext]
	if !ok {
		return nil, metrics.OutcomeUnsupported, fmt.Errorf("%w: %q", ErrUnsupportedFile, in.FileName)
	}

	bank := parser.GuessBankName(in.Data)
	s.metrics.ObserveBank(string(bank))

	var result *parser.ParseResult
	var err error
	if ext == ".xlsx" {
		result, err = s.parser.ParseWorkbook(in.Data)
	} else {
		result, err = s.parser.WithEncodingHint(in.EncodingHint).Parse(in.Data)
	}
	if err != nil {
		return nil, OutcomeFor(err), err
	}
	if len(result.Rows) == 0 {
		return &Preview{SkippedRows: result.SkippedRows}, metrics.OutcomeEmpty, ErrNoTransactions
	}

	amounts := make([]decimal.Decimal, len(result.Rows))
	for i, row := range result.Rows {
		amounts[i] = row.Amount
	}
	income, expenses, err := money.Totals(amounts, s.currency)
	if err != nil {
		return nil, metrics.OutcomeFailed, fmt.Errorf("failed to compute totals: %w", err)
	}

	categories := in.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	preview := &Preview{
		StatementID:         uuid.New(),
		Status:              StatusPendingReview,
		FileName:            in.FileName,
		BankName:            bank,
		Encoding:            result.Encoding,
		TotalTransactions:   len(result.Rows),
		SkippedRows:         result.SkippedRows,
		Skips:               result.Skips,
		TotalIncome:         income,
		TotalExpenses:       expenses,
		Transactions:        make([]ReviewItem, len(result.Rows)),
		AvailableCategories: categories,
	}
	preview.PeriodStart, preview.PeriodEnd = period(result.Rows)

	suggestions := s.suggest(ctx, result.Rows, categories)
	for i, row := range result.Rows {
		preview.Transactions[i] = ReviewItem{
			TempID:            i,
			Date:              row.Date,
			Description:       row.Description,
			Merchant:          normalizer.MerchantName(row.Description),
			Amount:            row.Amount,
			SuggestedCategory: suggestions[i],
		}
	}

	if s.archive != nil {
		info, err := s.archive.Save(ctx, in.UserID, preview.StatementID, in.FileName, contentType, bytes.NewReader(in.Data))
		if err != nil {
			return preview, metrics.OutcomeArchiveFailed, fmt.Errorf("failed to archive statement: %w", err)
		}
		preview.Archive = info
	}

	return preview, metrics.OutcomeSuccess, nil
}

// suggest always returns one entry per row; categorizer failures leave every
// suggestion empty.
func (s *ImportService) suggest(ctx context.Context, rows []parser.ParsedRow, categories []string) []string {
	suggestions := make([]string, len(rows))
	if s.categorizer == nil {
		return suggestions
	}

	inputs := make([]CategorizationInput, len(rows))
	for i, row := range rows {
		inputs[i] = CategorizationInput{Description: row.Description, Amount: row.Amount}
	}

	got, err := s.categorizer.SuggestCategories(ctx, inputs, categories)
	if err != nil {
		s.logger.Warn("categorization failed, continuing without suggestions", "error", err)
		return suggestions
	}
	if len(got) != len(rows) {
		s.logger.Warn("categorizer returned wrong number of suggestions", "want", len(rows), "got", len(got))
		return suggestions
	}
	return got
}

// Confirm validates the accepted rows and hands them to the sink.
func (s *ImportService) Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	ctx, span := s.tracer.Start(ctx, "ImportService.Confirm", trace.WithAttributes(
		attribute.String("statement.id", in.StatementID.String()),
		attribute.Int("statement.transactions", len(in.Transactions)),
	))
	defer span.End()

	if err := validateConfirmed(in.Transactions); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.sink != nil {
		if err := s.sink.SaveTransactions(ctx, in.StatementID, in.Transactions); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to save transactions: %w", err)
		}
	}
	s.metrics.ObserveConfirmed(len(in.Transactions))

	s.logger.Info("statement confirmed", "statement_id", in.StatementID, "transactions", len(in.Transactions))
	return &ConfirmResult{
		StatementID: in.StatementID,
		Status:      StatusCompleted,
		Total:       len(in.Transactions),
	}, nil
}

func validateConfirmed(txs []ConfirmedTransaction) error {
	if len(txs) == 0 {
		return ErrNoTransactions
	}
	for i, tx := range txs {
		switch {
		case tx.Date.IsZero():
			return fmt.Errorf("%w %d: missing date", ErrInvalidTransaction, i)
		case strings.TrimSpace(tx.Description) == "":
			return fmt.Errorf("%w %d: missing description", ErrInvalidTransaction, i)
		case tx.Amount.IsZero():
			return fmt.Errorf("%w %d: zero amount", ErrInvalidTransaction, i)
		}
	}
	return nil
}

func period(rows []parser.ParsedRow) (start, end time.Time) {
	start, end = rows[0].Date, rows[0].Date
	for _, row := range rows[1:] {
		if row.Date.Before(start) {
			start = row.Date
		}
		if row.Date.After(end) {
			end = row.Date
		}
	}
	return start, end
}

// OutcomeFor maps a preview or parse error to its metrics outcome label.
func OutcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUnsupportedFile):
		return metrics.OutcomeUnsupported
	case errors.Is(err, ErrNoTransactions):
		return metrics.OutcomeEmpty
	case errors.Is(err, parser.ErrDecode):
		return metrics.OutcomeDecodeError
	case errors.Is(err, parser.ErrSchema):
		return metrics.OutcomeSchemaError
	default:
		return metrics.OutcomeFailed
	}
}
