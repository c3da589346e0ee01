package categorization

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/normalizer"
)

// DefaultResolveThreshold is the minimum similarity (0-100) for a fuzzy
// category match.
const DefaultResolveThreshold = 70

// CategoryMatch is an available category ranked against a suggested name.
type CategoryMatch struct {
	Category string
	Score    int // 100 = same name after folding
	Distance int // Levenshtein distance between folded names
}

// ResolveCategory maps a suggested category name onto the user's categories,
// ignoring case and accents. It returns false when nothing is similar enough.
func ResolveCategory(name string, available []string, threshold int) (string, bool) {
	matches := RankCategories(name, available)
	if len(matches) == 0 || matches[0].Score < threshold {
		return "", false
	}
	return matches[0].Category, true
}

// RankCategories scores every available category against name, best first.
// Categories that contain name as a subsequence are ranked by the fuzzy
// search distance before the remaining ones.
func RankCategories(name string, available []string) []CategoryMatch {
	folded := normalizer.Fold(name)
	if folded == "" || len(available) == 0 {
		return nil
	}

	subsequence := make(map[int]int)
	ranks := fuzzy.RankFindNormalizedFold(folded, available)
	sort.Sort(ranks)
	for _, r := range ranks {
		subsequence[r.OriginalIndex] = r.Distance
	}

	matches := make([]CategoryMatch, 0, len(available))
	for _, category := range available {
		target := normalizer.Fold(category)
		if target == "" {
			continue
		}
		matches = append(matches, CategoryMatch{
			Category: category,
			Score:    fuzzyScore(folded, target),
			Distance: fuzzy.LevenshteinDistance(folded, target),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		di, iok := subsequence[indexOf(available, matches[i].Category)]
		dj, jok := subsequence[indexOf(available, matches[j].Category)]
		if iok != jok {
			return iok
		}
		if iok && di != dj {
			return di < dj
		}
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

// fuzzyScore calculates a similarity score between two folded strings (0-100)
// from containment and Levenshtein distance.
func fuzzyScore(s1, s2 string) int {
	if s1 == s2 {
		return 100
	}

	// One containing the other is the usual "Lazer" vs "Lazer e Cultura".
	if strings.Contains(s1, s2) {
		return 75 + (24 * len(s2) / len(s1))
	}
	if strings.Contains(s2, s1) {
		return 75 + (24 * len(s1) / len(s2))
	}

	maxLen := max(len([]rune(s1)), len([]rune(s2)))
	if maxLen == 0 {
		return 0
	}
	distance := fuzzy.LevenshteinDistance(s1, s2)
	return 100 * (maxLen - distance) / maxLen
}
