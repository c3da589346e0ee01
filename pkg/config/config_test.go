package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STATEMENT_ENCODING_HINT",
		"STATEMENT_FALLBACK_ENCODINGS",
		"STATEMENT_DELIMITER",
		"STATEMENT_CURRENCY",
		"STORAGE_LOCAL_PATH",
		"STORAGE_ARCHIVE_ENABLED",
		"LOG_LEVEL",
		"METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Statement.EncodingHint)
	assert.Nil(t, cfg.Statement.FallbackEncodings)
	assert.Equal(t, rune(0), cfg.Statement.Delimiter)
	assert.Equal(t, "BRL", cfg.Statement.Currency)
	assert.Equal(t, "./data/statements", cfg.Storage.LocalPath)
	assert.False(t, cfg.Storage.ArchiveEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STATEMENT_ENCODING_HINT", "cp1252")
	t.Setenv("STATEMENT_FALLBACK_ENCODINGS", "utf-8, latin1,,")
	t.Setenv("STATEMENT_DELIMITER", "semicolon")
	t.Setenv("STATEMENT_CURRENCY", "usd")
	t.Setenv("STORAGE_LOCAL_PATH", "/tmp/archive")
	t.Setenv("STORAGE_ARCHIVE_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cp1252", cfg.Statement.EncodingHint)
	assert.Equal(t, []string{"utf-8", "latin1"}, cfg.Statement.FallbackEncodings)
	assert.Equal(t, ';', cfg.Statement.Delimiter)
	assert.Equal(t, "USD", cfg.Statement.Currency)
	assert.Equal(t, "/tmp/archive", cfg.Storage.LocalPath)
	assert.True(t, cfg.Storage.ArchiveEnabled)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"currency", "STATEMENT_CURRENCY", "XYZ"},
		{"delimiter", "STATEMENT_DELIMITER", ";;"},
		{"log level", "LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		input   string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{",", ',', false},
		{"comma", ',', false},
		{"TAB", '\t', false},
		{`\t`, '\t', false},
		{"pipe", '|', false},
		{"|", '|', false},
		{`"`, 0, true},
		{"ab", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDelimiter(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
