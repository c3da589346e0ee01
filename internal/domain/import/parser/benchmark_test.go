package parser

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func BenchmarkStatementParser_Parse(b *testing.B) {
	p := newTestParser()
	for _, size := range []int{100, 1000, 10000} {
		data := generateStatement(gofakeit.New(int64(size)), size, ';')

		b.Run(fmt.Sprintf("%d_rows", size), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := p.Parse(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkResolveColumns(b *testing.B) {
	headers := []string{"Data Lançamento", "Histórico", "Documento", "Valor (R$)", "Saldo (R$)"}
	for i := 0; i < b.N; i++ {
		_, _ = ResolveColumns(headers)
	}
}

func BenchmarkGuessBankName(b *testing.B) {
	data := generateStatement(gofakeit.New(3), 20, ';')
	for i := 0; i < b.N; i++ {
		GuessBankName(data)
	}
}
