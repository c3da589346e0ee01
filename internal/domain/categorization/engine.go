package categorization

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/normalizer"
)

// MatchResult is a keyword hit with the rule that produced it.
type MatchResult struct {
	Keyword  string
	Category string
	Aliases  []string
	Priority int
	Income   bool
}

// Engine matches every keyword rule against a description in a single pass
// using the Aho-Corasick algorithm.
type Engine struct {
	matcher  *ahocorasick.Matcher
	patterns []string        // unique normalized keywords, in matcher order
	metadata [][]MatchResult // rules sharing a keyword are grouped
	mu       sync.RWMutex    // protects rebuilding the matcher
}

// NewEngine creates an engine from keyword rules.
func NewEngine(rules []KeywordRule) *Engine {
	e := &Engine{}
	e.Build(rules)
	return e
}

// Build replaces the engine's rules.
func (e *Engine) Build(rules []KeywordRule) {
	patternToIndex := make(map[string]int, len(rules))
	patterns := make([]string, 0, len(rules))
	metadata := make([][]MatchResult, 0, len(rules))

	for _, rule := range rules {
		pattern := matchText(rule.Keyword)
		if strings.TrimSpace(pattern) == "" || rule.Category == "" {
			continue
		}
		result := MatchResult{
			Keyword:  rule.Keyword,
			Category: rule.Category,
			Aliases:  rule.Aliases,
			Priority: rule.Priority,
			Income:   rule.Income,
		}
		if idx, ok := patternToIndex[pattern]; ok {
			metadata[idx] = append(metadata[idx], result)
			continue
		}
		patternToIndex[pattern] = len(patterns)
		patterns = append(patterns, pattern)
		metadata = append(metadata, []MatchResult{result})
	}

	var matcher *ahocorasick.Matcher
	if len(patterns) > 0 {
		matcher = ahocorasick.NewStringMatcher(patterns)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.matcher = matcher
	e.patterns = patterns
	e.metadata = metadata
}

// MatchAll returns every hit for description sorted by priority, highest
// first. Equal priorities keep rule order.
func (e *Engine) MatchAll(description string) []MatchResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil {
		return nil
	}

	hits := e.matcher.MatchThreadSafe([]byte(matchText(description)))
	if len(hits) == 0 {
		return nil
	}
	slices.Sort(hits)

	results := make([]MatchResult, 0, len(hits))
	for _, idx := range hits {
		if idx >= 0 && idx < len(e.metadata) {
			results = append(results, e.metadata[idx]...)
		}
	}
	slices.SortStableFunc(results, func(a, b MatchResult) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return results
}

// matchText folds s and reduces it to space-separated words with a space on
// each side, so keywords only match whole words.
func matchText(s string) string {
	words := strings.FieldsFunc(normalizer.Fold(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return " " + strings.Join(words, " ") + " "
}
