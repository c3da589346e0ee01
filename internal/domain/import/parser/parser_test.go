package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *StatementParser {
	return NewStatementParser(DefaultConfig(), nil)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "amount: got %s, want %s", got, want)
}

func TestStatementParser_ParseTable(t *testing.T) {
	t.Run("brazilian unified amount", func(t *testing.T) {
		csvData := "Data,Histórico,Valor\n15/01/2025,PIX RECEBIDO,\"R$ 1.234,56\"\n16/01/2025,Padaria,\"-50,00\"\n"

		rows, err := newTestParser().ParseTable([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, day(2025, 1, 15), rows[0].Date)
		assert.Equal(t, "PIX RECEBIDO", rows[0].Description)
		assertAmount(t, "1234.56", rows[0].Amount)
		assert.Equal(t, 2, rows[0].Line)

		assertAmount(t, "-50", rows[1].Amount)
		assert.Equal(t, 3, rows[1].Line)
	})

	t.Run("debit and credit pair", func(t *testing.T) {
		csvData := "date,description,debit,credit\n2025-01-15,Coffee,4.50,\n2025-01-16,Salary,,5000.00\n2025-01-17,Refund,10.00,12.50\n"

		rows, err := newTestParser().ParseTable([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assertAmount(t, "-4.5", rows[0].Amount)
		assertAmount(t, "5000", rows[1].Amount)
		assertAmount(t, "2.5", rows[2].Amount)
	})

	t.Run("negative debit column still reads as outflow", func(t *testing.T) {
		csvData := "Data;Descrição;Débito;Crédito\n15/01/2025;Mercado;-120,00;\n"

		rows, err := newTestParser().ParseTable([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assertAmount(t, "-120", rows[0].Amount)
	})

	t.Run("nubank card export", func(t *testing.T) {
		csvData := "date,category,title,amount\n2025-01-15,restaurante,Padaria Real,32.90\n2025-01-16,transporte,Uber *Trip,18.40\n"

		rows, err := newTestParser().ParseTable([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Padaria Real", rows[0].Description)
		assertAmount(t, "32.9", rows[0].Amount)
		assert.Equal(t, "Uber *Trip", rows[1].Description)
	})

	t.Run("us formatted amounts", func(t *testing.T) {
		csvData := "date,description,amount\n01/15/2025,ignored,1.00\n2025-01-15,Rent,\"-1,234.56\"\n2025-01-16,Tip,1.5\n2025-01-17,Plain,1234.56\n"

		rows, err := newTestParser().ParseTable([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assertAmount(t, "-1234.56", rows[0].Amount)
		assertAmount(t, "1.5", rows[1].Amount)
		assertAmount(t, "1234.56", rows[2].Amount)
	})

	t.Run("semicolon export with comma decimals", func(t *testing.T) {
		csvData := "Data;Histórico;Valor\r\n15/01/2025;Supermercado;-1.234,56\r\n16/01/2025;Cashback;2,5\r\n17/01/2025;Ajuste;1.234\r\n"

		rows, err := newTestParser().ParseTable([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assertAmount(t, "-1234.56", rows[0].Amount)
		assertAmount(t, "2.5", rows[1].Amount)
		assertAmount(t, "1234", rows[2].Amount)
	})

	t.Run("header only yields no rows", func(t *testing.T) {
		rows, err := newTestParser().ParseTable([]byte("date,description,amount\n"))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("ragged rows read missing cells as empty", func(t *testing.T) {
		csvData := "date,description,debit,credit\n2025-01-15,Coffee,4.50\n2025-01-16,Short\n"

		result, err := newTestParser().Parse([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assertAmount(t, "-4.5", result.Rows[0].Amount)
		assert.Equal(t, 1, result.SkippedRows)
		assert.Equal(t, "zero amount", result.Skips[0].Reason)
	})

	t.Run("collapses description whitespace", func(t *testing.T) {
		csvData := "date,description,amount\n2025-01-15,\"  UBER   *TRIP \",-20\n"

		rows, err := newTestParser().ParseTable([]byte(csvData))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "UBER *TRIP", rows[0].Description)
	})
}

func TestStatementParser_RowSkips(t *testing.T) {
	csvData := strings.Join([]string{
		"data;descricao;valor",
		"15/01/2025;ok one;10,00",
		"not a date;bad date;5",
		"16/01/2025;   ;5",
		"17/01/2025;zero;0,00",
		"18/01/2025;garbage;abc",
		"19/01/2025;empty amount;",
		"20/01/2025;ok two;-3",
	}, "\n")

	result, err := newTestParser().Parse([]byte(csvData))
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "ok one", result.Rows[0].Description)
	assert.Equal(t, "ok two", result.Rows[1].Description)

	assert.Equal(t, 7, result.TotalRows)
	assert.Equal(t, 5, result.SkippedRows)
	assert.Equal(t, result.TotalRows, len(result.Rows)+result.SkippedRows)

	reasons := make([]string, len(result.Skips))
	lines := make([]int, len(result.Skips))
	for i, s := range result.Skips {
		reasons[i] = s.Reason
		lines[i] = s.Line
	}
	assert.Equal(t, []string{"invalid date", "missing description", "zero amount", "invalid amount", "missing amount"}, reasons)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, lines)
}

func TestStatementParser_MalformedRowTolerance(t *testing.T) {
	var b strings.Builder
	b.WriteString("date,description,amount\n")
	for i := 1; i <= 10; i++ {
		date := fmt.Sprintf("2025-01-%02d", i)
		if i == 3 || i == 7 {
			date = "31/31/2025"
		}
		fmt.Fprintf(&b, "%s,row %d,%d.00\n", date, i, i)
	}

	rows, err := newTestParser().ParseTable([]byte(b.String()))
	require.NoError(t, err)
	require.Len(t, rows, 8)

	want := []int{1, 2, 4, 5, 6, 8, 9, 10}
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("row %d", want[i]), row.Description)
	}
}

func TestStatementParser_DateFormats(t *testing.T) {
	csvData := "date,description,amount\n15/01/2025,a,1\n2025-01-15,b,1\n15-01-2025,c,1\n"

	rows, err := newTestParser().ParseTable([]byte(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, day(2025, 1, 15), row.Date)
	}
}

func TestStatementParser_Errors(t *testing.T) {
	t.Run("unresolvable schema", func(t *testing.T) {
		rows, err := newTestParser().ParseTable([]byte("foo,bar,baz\n1,2,3\n"))
		require.Error(t, err)
		assert.Empty(t, rows)
		assert.ErrorIs(t, err, ErrSchema)
		assert.False(t, errors.Is(err, ErrDecode))

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Missing, "date")
		assert.Contains(t, schemaErr.Missing, "description")
	})

	t.Run("incomplete debit credit pair", func(t *testing.T) {
		_, err := newTestParser().ParseTable([]byte("date,description,debit\n"))
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, []string{"amount (or debit and credit)"}, schemaErr.Missing)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := newTestParser().ParseTable(nil)
		assert.ErrorIs(t, err, ErrDecode)
		assert.False(t, errors.Is(err, ErrSchema))
	})

	t.Run("binary input", func(t *testing.T) {
		_, err := newTestParser().ParseTable([]byte{0x00, 0x01, 0x02, 0x03, 0xff, 0x00})
		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, []string{"UTF-8", "ISO-8859-1", "windows-1252"}, decodeErr.Tried)
	})
}

func TestStatementParser_Idempotent(t *testing.T) {
	data := generateStatement(gofakeit.New(7), 50, ';')
	p := newTestParser()

	first, err := p.Parse(data)
	require.NoError(t, err)
	second, err := p.Parse(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStatementParser_GeneratedStatements(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			faker := gofakeit.New(seed)
			want := fakeRows(faker, 40)
			data := encodeRows(want, ';')

			rows, err := newTestParser().ParseTable(data)
			require.NoError(t, err)
			require.Len(t, rows, len(want))

			for i, row := range rows {
				assert.NotEmpty(t, row.Description)
				assert.False(t, row.Amount.IsZero())
				assert.Equal(t, want[i].Date, row.Date)
				assert.Equal(t, want[i].Description, row.Description)
				assertAmount(t, want[i].Amount.String(), row.Amount)
				if i > 0 {
					assert.Greater(t, row.Line, rows[i-1].Line)
				}
			}
		})
	}
}

func TestStatementParser_ConfiguredDelimiter(t *testing.T) {
	config := DefaultConfig()
	config.Delimiter = '|'
	p := NewStatementParser(config, nil)

	result, err := p.Parse([]byte("date|description|amount\n2025-01-15|A, B; C|9.90\n"))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "A, B; C", result.Rows[0].Description)
	assert.Equal(t, "|", result.Delimiter)
}

func TestStatementParser_MetadataLines(t *testing.T) {
	csvData := "Extrato de conta corrente\nAgência;0001;Conta;12345-6\n\nData Lançamento;Histórico;Valor (R$);Saldo (R$)\n02/01/2025;PIX ENVIADO;-10,00;990,00\n"

	result, err := newTestParser().Parse([]byte(csvData))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 5, result.Rows[0].Line)
	assert.Equal(t, ColumnMapping{Date: 0, Description: 1, Amount: 2, Debit: -1, Credit: -1}, result.Mapping)
	assertAmount(t, "-10", result.Rows[0].Amount)
}

type fakeRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

func fakeRows(faker *gofakeit.Faker, n int) []fakeRow {
	start := day(2024, 1, 1)
	end := day(2025, 12, 31)
	rows := make([]fakeRow, n)
	for i := range rows {
		d := faker.DateRange(start, end)
		amount := decimal.NewFromFloat(faker.Price(1, 9999)).Round(2)
		if faker.Bool() {
			amount = amount.Neg()
		}
		rows[i] = fakeRow{
			Date:        day(d.Year(), d.Month(), d.Day()),
			Description: strings.Join(strings.Fields(faker.Company()+" "+faker.City()), " "),
			Amount:      amount,
		}
	}
	return rows
}

// brazilian formats an amount as "-1.234,56".
func brazilian(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	var groups []string
	for len(whole) > 3 {
		groups = append([]string{whole[len(whole)-3:]}, groups...)
		whole = whole[:len(whole)-3]
	}
	groups = append([]string{whole}, groups...)
	return sign + strings.Join(groups, ".") + "," + frac
}

func encodeRows(rows []fakeRow, delimiter rune) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter
	_ = w.Write([]string{"Data", "Histórico", "Valor"})
	for _, r := range rows {
		_ = w.Write([]string{r.Date.Format("02/01/2006"), r.Description, brazilian(r.Amount)})
	}
	w.Flush()
	return buf.Bytes()
}

func generateStatement(faker *gofakeit.Faker, n int, delimiter rune) []byte {
	return encodeRows(fakeRows(faker, n), delimiter)
}
