// Package normalizer turns raw statement cells into typed values: signed
// decimal amounts, calendar dates and cleaned descriptions.
package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Dialect describes which separator a column uses as the decimal mark.
type Dialect int

const (
	DialectUnknown      Dialect = iota
	DialectDotDecimal           // 1,234.56
	DialectCommaDecimal         // 1.234,56
)

func (d Dialect) String() string {
	switch d {
	case DialectDotDecimal:
		return "dot-decimal"
	case DialectCommaDecimal:
		return "comma-decimal"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Longer markers first so "R$" is removed before "$".
var currencyMarkers = []string{"R$", "US$", "BRL", "USD", "EUR", "GBP", "$", "€", "£"}

var nullTokens = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"n/a":  true,
}

// ParseAmount parses a monetary cell into a signed decimal.
//
// Currency markers and whitespace are dropped first. A leading or trailing
// minus, or surrounding parentheses, make the value negative. When both "."
// and "," appear the last one is the decimal mark. A lone separator followed
// by one or two digits is the decimal mark; followed by exactly three digits
// it is ambiguous and the dialect decides, defaulting to thousands grouping.
func ParseAmount(raw string, dialect Dialect) (decimal.Decimal, error) {
	s := stripCurrency(raw)
	if s == "" || nullTokens[strings.ToLower(s)] {
		return decimal.Zero, ErrEmptyAmount
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasPrefix(s, "-"):
		negative = !negative
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = !negative
		s = s[:len(s)-1]
	}

	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	for _, r := range s {
		if !isDigit(r) && r != '.' && r != ',' {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
		}
	}

	number, err := normalizeSeparators(s, dialect)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}

	d, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites a digits-and-separators string into the
// canonical "1234.56" form.
func normalizeSeparators(s string, dialect Dialect) (string, error) {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	var decimalSep, thousandsSep byte
	switch {
	case lastDot < 0 && lastComma < 0:
		return s, nil
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			decimalSep, thousandsSep = ',', '.'
		} else {
			decimalSep, thousandsSep = '.', ','
		}
	default:
		sep := byte('.')
		idx := lastDot
		if lastComma >= 0 {
			sep, idx = ',', lastComma
		}
		switch {
		case strings.Count(s, string(sep)) > 1:
			thousandsSep = sep
		case len(s)-idx-1 == 3 && !dialectUsesDecimal(dialect, sep):
			thousandsSep = sep
		default:
			decimalSep = sep
		}
	}

	intPart, fracPart := s, ""
	if decimalSep != 0 {
		if strings.Count(s, string(decimalSep)) > 1 {
			return "", errors.New("repeated decimal mark")
		}
		idx := strings.IndexByte(s, decimalSep)
		intPart, fracPart = s[:idx], s[idx+1:]
		if strings.ContainsAny(fracPart, ".,") {
			return "", errors.New("separator after decimal mark")
		}
	}

	if thousandsSep != 0 {
		groups := strings.Split(intPart, string(thousandsSep))
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return "", errors.New("malformed thousands grouping")
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return "", errors.New("malformed thousands grouping")
			}
		}
		intPart = strings.Join(groups, "")
	}

	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		return intPart, nil
	}
	return intPart + "." + fracPart, nil
}

func dialectUsesDecimal(d Dialect, sep byte) bool {
	return (d == DialectDotDecimal && sep == '.') || (d == DialectCommaDecimal && sep == ',')
}

// DetectDialect votes over a column's sample values to decide which separator
// is the decimal mark. Ties and columns with no evidence yield DialectUnknown.
func DetectDialect(samples []string) Dialect {
	commaHints, dotHints := 0, 0

	for _, raw := range samples {
		cleaned := strings.Map(func(r rune) rune {
			if isDigit(r) || r == ',' || r == '.' {
				return r
			}
			return -1
		}, raw)
		if cleaned == "" {
			continue
		}

		lastDot := strings.LastIndexByte(cleaned, '.')
		lastComma := strings.LastIndexByte(cleaned, ',')
		switch {
		case lastDot >= 0 && lastComma >= 0:
			if lastComma > lastDot {
				commaHints++
			} else {
				dotHints++
			}
		case lastComma >= 0:
			if hasDecimalSuffix(cleaned, lastComma) {
				commaHints++
			}
		case lastDot >= 0:
			if hasDecimalSuffix(cleaned, lastDot) {
				dotHints++
			}
		}
	}

	switch {
	case commaHints > dotHints:
		return DialectCommaDecimal
	case dotHints > commaHints:
		return DialectDotDecimal
	default:
		return DialectUnknown
	}
}

func hasDecimalSuffix(value string, idx int) bool {
	digits := len(value) - idx - 1
	return digits >= 1 && digits <= 2
}

func stripCurrency(raw string) string {
	s := raw
	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
