package categorization

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_MatchAll_DefaultRules(t *testing.T) {
	engine := NewEngine(DefaultRules())

	tests := []struct {
		name        string
		description string
		want        string
		income      bool
	}{
		{name: "delivery app", description: "IFOOD *RESTAURANTE SABOR", want: "Alimentação"},
		{name: "rideshare", description: "UBER *TRIP 12/01", want: "Transporte"},
		{name: "accent folded", description: "FARMÁCIA SÃO JOÃO", want: "Saúde"},
		{name: "streaming", description: "NETFLIX.COM", want: "Lazer"},
		{name: "more specific keyword wins", description: "MERCADO LIVRE*VENDEDOR", want: "Compras"},
		{name: "whole words only", description: "SUPERMERCADOS BH", want: ""},
		{name: "income rule", description: "SALARIO EMPRESA X", want: "Salário", income: true},
		{name: "no match", description: "TRANSFERENCIA 123", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.MatchAll(tt.description)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0].Category)
			assert.Equal(t, tt.income, got[0].Income)
		})
	}
}

func TestEngine_MatchAll(t *testing.T) {
	engine := NewEngine([]KeywordRule{
		{Keyword: "posto", Category: "Transporte", Priority: 10},
		{Keyword: "shell", Category: "Transporte", Priority: 10},
		{Keyword: "loja de conveniencia", Category: "Alimentação", Priority: 20},
	})

	results := engine.MatchAll("POSTO SHELL LOJA DE CONVENIÊNCIA")
	require.Len(t, results, 3)
	assert.Equal(t, "loja de conveniencia", results[0].Keyword)
	assert.Equal(t, "posto", results[1].Keyword)
	assert.Equal(t, "shell", results[2].Keyword)
}

func TestEngine_DuplicateKeywords(t *testing.T) {
	engine := NewEngine([]KeywordRule{
		{Keyword: "Netflix", Category: "Lazer", Priority: 1},
		{Keyword: "NETFLIX", Category: "Assinaturas", Priority: 5},
	})

	got := engine.MatchAll("netflix")
	require.Len(t, got, 2)
	assert.Equal(t, "Assinaturas", got[0].Category)
	assert.Equal(t, "Lazer", got[1].Category)
}

func TestEngine_Empty(t *testing.T) {
	engine := NewEngine(nil)
	assert.Nil(t, engine.MatchAll("anything"))

	engine.Build([]KeywordRule{{Keyword: "  ", Category: "Lazer"}, {Keyword: "x", Category: ""}})
	assert.Nil(t, engine.MatchAll("x"))

	engine.Build([]KeywordRule{{Keyword: "cinema", Category: "Lazer"}})
	got := engine.MatchAll("CINEMA SHOPPING")
	require.Len(t, got, 1)
	assert.Equal(t, "Lazer", got[0].Category)
}

func TestEngine_ConcurrentMatch(t *testing.T) {
	engine := NewEngine(DefaultRules())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got := engine.MatchAll(fmt.Sprintf("UBER TRIP %d-%d", i, j))
				if assert.NotEmpty(t, got) {
					assert.Equal(t, "Transporte", got[0].Category)
				}
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkEngine_MatchAll(b *testing.B) {
	engine := NewEngine(DefaultRules())
	descriptions := []string{
		"IFOOD *RESTAURANTE SABOR",
		"COMPRA CARTAO DROGASIL 123",
		"PIX ENVIADO FULANO DE TAL",
		"MERCADO LIVRE*VENDEDOR",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.MatchAll(descriptions[i%len(descriptions)])
	}
}
