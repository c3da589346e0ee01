package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveImport(t *testing.T) {
	m := New()

	m.ObserveImport(OutcomeSuccess, 10, 2)
	m.ObserveImport(OutcomeSuccess, 5, 0)
	m.ObserveImport(OutcomeSchemaError, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Imports.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports.WithLabelValues(OutcomeSchemaError)))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.RowsParsed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsSkipped))
}

func TestMetrics_ObserveBankAndConfirmed(t *testing.T) {
	m := New()

	m.ObserveBank("nubank")
	m.ObserveBank("nubank")
	m.ObserveBank("generic")
	m.ObserveConfirmed(7)

	assert.Equal(t, 2, testutil.CollectAndCount(m.BankGuesses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BankGuesses.WithLabelValues("nubank")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Confirmed))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveImport(OutcomeSuccess, 1, 1)
		m.ObserveBank("itau")
		m.ObserveConfirmed(1)
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ObserveImport(OutcomeSuccess, 3, 1)

	path := filepath.Join(t.TempDir(), "statement.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `statement_imports_total{outcome="success"} 1`)
	assert.Contains(t, string(data), "statement_rows_parsed_total 3")
}
