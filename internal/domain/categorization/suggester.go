// Package categorization suggests spending categories for statement rows
// from keyword rules resolved against the user's own category names.
package categorization

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Transaction is the part of a statement row a suggestion is based on.
type Transaction struct {
	Description string
	Amount      decimal.Decimal
}

// Suggester proposes a category per transaction. It is safe for concurrent use.
type Suggester struct {
	engine    *Engine
	threshold int
	logger    *slog.Logger
}

// NewSuggester creates a suggester from keyword rules; nil rules load
// DefaultRules.
func NewSuggester(rules []KeywordRule, logger *slog.Logger) *Suggester {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{
		engine:    NewEngine(rules),
		threshold: DefaultResolveThreshold,
		logger:    logger,
	}
}

// WithThreshold sets the minimum similarity for resolving a rule's category
// onto an available one.
func (s *Suggester) WithThreshold(threshold int) *Suggester {
	s.threshold = threshold
	return s
}

// Suggest returns one of available for tx, or "" when no rule applies or no
// available category resembles the rule's category.
func (s *Suggester) Suggest(tx Transaction, available []string) string {
	if len(available) == 0 {
		return ""
	}

	inflow := tx.Amount.IsPositive()
	for _, m := range s.engine.MatchAll(tx.Description) {
		if m.Income && !inflow {
			continue
		}
		for _, candidate := range append([]string{m.Category}, m.Aliases...) {
			if category, ok := ResolveCategory(candidate, available, s.threshold); ok {
				return category
			}
		}
	}
	return ""
}

// SuggestBatch suggests a category for each transaction, in order.
func (s *Suggester) SuggestBatch(ctx context.Context, txs []Transaction, available []string) ([]string, error) {
	suggestions := make([]string, len(txs))
	matched := 0
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		suggestions[i] = s.Suggest(tx, available)
		if suggestions[i] != "" {
			matched++
		}
	}

	s.logger.Debug("categories suggested", "transactions", len(txs), "matched", matched)
	return suggestions, nil
}
