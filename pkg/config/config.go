package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"

	"github.com/FACorreiaa/finance-dashboard/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Statement     StatementConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

type StatementConfig struct {
	EncodingHint      string
	FallbackEncodings []string
	Delimiter         rune // 0 means detect
	Currency          string
}

type StorageConfig struct {
	LocalPath      string
	ArchiveEnabled bool
}

type ObservabilityConfig struct {
	LogLevel       slog.Level
	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Statement: StatementConfig{
			EncodingHint:      getEnv("STATEMENT_ENCODING_HINT", ""),
			FallbackEncodings: getEnvAsList("STATEMENT_FALLBACK_ENCODINGS"),
			Currency:          getEnv("STATEMENT_CURRENCY", money.BRL),
		},
		Storage: StorageConfig{
			LocalPath:      getEnv("STORAGE_LOCAL_PATH", "./data/statements"),
			ArchiveEnabled: getEnvAsBool("STORAGE_ARCHIVE_ENABLED", false),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	delimiter, err := ParseDelimiter(getEnv("STATEMENT_DELIMITER", ""))
	if err != nil {
		return nil, fmt.Errorf("STATEMENT_DELIMITER: %w", err)
	}
	cfg.Statement.Delimiter = delimiter

	currency, err := money.NormalizeCurrency(cfg.Statement.Currency)
	if err != nil {
		return nil, fmt.Errorf("STATEMENT_CURRENCY: %w", err)
	}
	cfg.Statement.Currency = currency

	if err := cfg.Observability.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// ParseDelimiter accepts a single character or one of the names "comma",
// "semicolon", "tab", "pipe". The empty string means auto-detect.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "tab", `\t`:
		return '\t', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
