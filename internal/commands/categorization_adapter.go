package commands

import (
	"context"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/categorization"
	importservice "github.com/FACorreiaa/finance-dashboard/internal/domain/import/service"
)

// categorizationAdapter adapts categorization.Suggester to import's Categorizer interface
type categorizationAdapter struct {
	suggester *categorization.Suggester
}

// newCategorizationAdapter creates a new adapter
func newCategorizationAdapter(s *categorization.Suggester) importservice.Categorizer {
	return &categorizationAdapter{suggester: s}
}

// SuggestCategories implements importservice.Categorizer
func (a *categorizationAdapter) SuggestCategories(ctx context.Context, inputs []importservice.CategorizationInput, available []string) ([]string, error) {
	txs := make([]categorization.Transaction, len(inputs))
	for i, in := range inputs {
		txs[i] = categorization.Transaction{Description: in.Description, Amount: in.Amount}
	}
	return a.suggester.SuggestBatch(ctx, txs, available)
}
