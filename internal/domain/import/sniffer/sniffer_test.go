package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConfigWithOptions_AutoDetect(t *testing.T) {
	t.Run("comma separated with header on first line", func(t *testing.T) {
		text := "date,description,amount\n2025-01-15,Coffee,-4.50\n"

		cfg, err := DetectConfigWithOptions(text, nil)
		require.NoError(t, err)
		assert.Equal(t, ',', cfg.Delimiter)
		assert.Equal(t, 0, cfg.SkipLines)
		assert.Equal(t, 1, cfg.HeaderLine())
		assert.Equal(t, []string{"date", "description", "amount"}, cfg.Headers)
		assert.Equal(t, "2025-01-15,Coffee,-4.50\n", text[cfg.DataOffset:])
	})

	t.Run("semicolon brazilian export", func(t *testing.T) {
		text := "Data;Histórico;Valor\r\n15/01/2025;PIX RECEBIDO;1.234,56\r\n"

		cfg, err := DetectConfigWithOptions(text, nil)
		require.NoError(t, err)
		assert.Equal(t, ';', cfg.Delimiter)
		assert.Equal(t, []string{"Data", "Histórico", "Valor"}, cfg.Headers)
		assert.Equal(t, "15/01/2025;PIX RECEBIDO;1.234,56\r\n", text[cfg.DataOffset:])
	})

	t.Run("skips account metadata before the header", func(t *testing.T) {
		text := "Conta;12345-6\nPeríodo;01/01/2025 a 31/01/2025\n\nData Lançamento;Descrição;Valor;Saldo\n02/01/2025;Mercado;-10,00;990,00\n"

		cfg, err := DetectConfigWithOptions(text, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.SkipLines)
		assert.Equal(t, 4, cfg.HeaderLine())
		assert.Equal(t, "Data Lançamento", cfg.Headers[0])
		assert.Equal(t, "02/01/2025;Mercado;-10,00;990,00\n", text[cfg.DataOffset:])
	})

	t.Run("unknown headers fall back to the first line", func(t *testing.T) {
		cfg, err := DetectConfigWithOptions("foo,bar,baz\n1,2,3\n", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.SkipLines)
		assert.Equal(t, []string{"foo", "bar", "baz"}, cfg.Headers)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		cfg, err := DetectConfigWithOptions("\uFEFFdate,description,amount\n", nil)
		require.NoError(t, err)
		assert.Equal(t, "date", cfg.Headers[0])
	})

	t.Run("quoted delimiters are not counted", func(t *testing.T) {
		cfg, err := DetectConfigWithOptions("\"Valor, R$\";Data;Descrição\n", nil)
		require.NoError(t, err)
		assert.Equal(t, ';', cfg.Delimiter)
		assert.Equal(t, "Valor, R$", cfg.Headers[0])
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := DetectConfigWithOptions(" \n\r\n", nil)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestDetectConfigWithOptions_Overrides(t *testing.T) {
	t.Run("forced delimiter", func(t *testing.T) {
		cfg, err := DetectConfigWithOptions("a|b;c\n", &DetectOptions{HeaderRowIndex: -1, Delimiter: '|'})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b;c"}, cfg.Headers)
	})

	t.Run("forced header row", func(t *testing.T) {
		cfg, err := DetectConfigWithOptions("junk\ndate,description,amount\n", &DetectOptions{HeaderRowIndex: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.SkipLines)
	})

	t.Run("header row out of range", func(t *testing.T) {
		_, err := DetectConfigWithOptions("date\n", &DetectOptions{HeaderRowIndex: 5})
		assert.ErrorIs(t, err, ErrNoHeadersFound)
	})
}

func TestGenerateFingerprint(t *testing.T) {
	a := generateFingerprint([]string{"Data", "Histórico", "Valor (R$)"})
	b := generateFingerprint([]string{" data ", "HISTORICO", "valor r$"})
	c := generateFingerprint([]string{"date", "description", "amount"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want rune
	}{
		{line: "a,b,c", want: ','},
		{line: "a;b;c", want: ';'},
		{line: "a\tb\tc", want: '\t'},
		{line: "a|b|c", want: '|'},
		{line: "single", want: ','},
		{line: "a;b,c", want: ','},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, _ := detectDelimiter(tt.line)
			assert.Equal(t, tt.want, got)
		})
	}
}
