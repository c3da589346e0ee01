package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "PIX RECEBIDO JOAO", CleanDescription("  PIX   RECEBIDO\tJOAO \n"))
	assert.Equal(t, "", CleanDescription(" \t "))
	assert.Equal(t, "Coffee Shop", CleanDescription("Coffee\x0cShop"))
	assert.Equal(t, "Coffee Shop", CleanDescription("Coffee\x00Shop\x1a"))
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Histórico":       "historico",
		"  DESCRIÇÃO ":    "descricao",
		"Lançamento":      "lancamento",
		"Valor (R$)":      "valor (r$)",
		"Caixa Econômica": "caixa economica",
		"already plain":   "already plain",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, Fold(input))
		})
	}
}
