// Package metrics holds the Prometheus collectors for statement imports.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statement"

// Outcome labels for Imports.
const (
	OutcomeSuccess       = "success"
	OutcomeDecodeError   = "decode_error"
	OutcomeSchemaError   = "schema_error"
	OutcomeEmpty         = "empty"
	OutcomeUnsupported   = "unsupported"
	OutcomeArchiveFailed = "archive_failed"
	OutcomeFailed        = "failed"
)

// Metrics groups the import collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	Imports     *prometheus.CounterVec
	RowsParsed  prometheus.Counter
	RowsSkipped prometheus.Counter
	BankGuesses *prometheus.CounterVec
	Confirmed   prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Statement previews by outcome.",
		}, []string{"outcome"}),
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_parsed_total",
			Help:      "Rows turned into transactions.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Data rows skipped during parsing.",
		}),
		BankGuesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_guesses_total",
			Help:      "Bank guesses by bank.",
		}, []string{"bank"}),
		Confirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_confirmed_total",
			Help:      "Transactions handed over after review.",
		}),
	}

	m.Registry.MustRegister(m.Imports, m.RowsParsed, m.RowsSkipped, m.BankGuesses, m.Confirmed)
	return m
}

// ObserveImport records one preview attempt. Nil receivers are ignored.
func (m *Metrics) ObserveImport(outcome string, parsed, skipped int) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(outcome).Inc()
	m.RowsParsed.Add(float64(parsed))
	m.RowsSkipped.Add(float64(skipped))
}

// ObserveBank records a bank guess.
func (m *Metrics) ObserveBank(bank string) {
	if m == nil {
		return
	}
	m.BankGuesses.WithLabelValues(bank).Inc()
}

// ObserveConfirmed records confirmed transactions.
func (m *Metrics) ObserveConfirmed(n int) {
	if m == nil {
		return
	}
	m.Confirmed.Add(float64(n))
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
