package commands

import (
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/categorization"
	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/finance-dashboard/internal/domain/import/service"
	"github.com/FACorreiaa/finance-dashboard/pkg/config"
	"github.com/FACorreiaa/finance-dashboard/pkg/metrics"
	"github.com/FACorreiaa/finance-dashboard/pkg/storage"
)

// parserFlags are the per-run overrides shared by the statement commands.
type parserFlags struct {
	encoding  string
	delimiter string
}

// Dependencies holds what a command run needs
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Metrics       *metrics.Metrics
	Parser        *parser.StatementParser
	Suggester     *categorization.Suggester
	FileStorage   storage.Storage // nil until archiving or an archive command needs it
	ImportService *importservice.ImportService
}

// InitDependencies wires the parser, suggester, archive and import service.
func InitDependencies(cfg *config.Config, logger *slog.Logger, flags parserFlags) (*Dependencies, error) {
	d := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := d.initParser(flags); err != nil {
		return nil, err
	}
	if err := d.initServices(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dependencies) initParser(flags parserFlags) error {
	pc := parser.DefaultConfig()
	pc.EncodingHint = d.Config.Statement.EncodingHint
	if len(d.Config.Statement.FallbackEncodings) > 0 {
		pc.FallbackEncodings = d.Config.Statement.FallbackEncodings
	}
	pc.Delimiter = d.Config.Statement.Delimiter

	if flags.encoding != "" {
		pc.EncodingHint = flags.encoding
	}
	if flags.delimiter != "" {
		delimiter, err := config.ParseDelimiter(flags.delimiter)
		if err != nil {
			return fmt.Errorf("--delimiter: %w", err)
		}
		pc.Delimiter = delimiter
	}

	d.Parser = parser.NewStatementParser(pc, d.Logger)
	return nil
}

func (d *Dependencies) initServices() error {
	d.Suggester = categorization.NewSuggester(nil, d.Logger)

	d.ImportService = importservice.NewImportService(d.Parser, d.Logger).
		WithCategorizer(newCategorizationAdapter(d.Suggester)).
		WithCurrency(d.Config.Statement.Currency)
	if d.Config.Observability.MetricsEnabled {
		d.ImportService.WithMetrics(d.Metrics)
	}

	if d.Config.Storage.ArchiveEnabled {
		if err := d.initFileStorage(); err != nil {
			return err
		}
		d.ImportService.WithArchive(d.FileStorage)
	}

	return nil
}

// initFileStorage opens the statement archive. The archive commands call it
// directly so uploads stay reachable after archiving is switched off.
func (d *Dependencies) initFileStorage() error {
	if d.FileStorage != nil {
		return nil
	}
	fileStorage, err := storage.New(storage.Config{
		Type:      storage.StorageTypeLocal,
		LocalPath: d.Config.Storage.LocalPath,
	})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage
	return nil
}
