package normalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Payment-channel prefixes Brazilian banks put in front of the merchant,
// compared after Fold. Longer prefixes come first.
var merchantPrefixes = []string{
	"compra no cartao de credito ", "compra no cartao de debito ", "compra no debito ",
	"compra no credito ", "compra cartao ", "compra ",
	"pix enviado ", "pix recebido ", "transferencia enviada ", "transferencia recebida ",
	"pagamento de boleto ", "pagamento ", "pgto ", "pag ",
	"debito automatico ", "deb autom ", "ted ", "doc ", "tev ",
}

var (
	trailingRef  = regexp.MustCompile(`\s+[\d./-]{4,}$`)
	trailingDate = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}(/\d{2,4})?$`)
	cardSuffix   = regexp.MustCompile(`\*+\s*`)
)

// MerchantName extracts a display name from a transaction description by
// dropping payment-channel prefixes, trailing reference numbers and dates,
// and title-casing what is left. It returns the cleaned description when
// no letters would remain.
func MerchantName(description string) string {
	s := CleanDescription(description)
	if s == "" {
		return ""
	}

	folded := Fold(s)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(folded, prefix) {
			s = dropRunes(s, utf8.RuneCountInString(prefix))
			break
		}
	}

	s = cardSuffix.ReplaceAllString(s, " ")
	for {
		trimmed := trailingDate.ReplaceAllString(trailingRef.ReplaceAllString(s, ""), "")
		if trimmed == s {
			break
		}
		s = trimmed
	}

	s = strings.Trim(CleanDescription(s), " -")
	if !strings.ContainsFunc(s, unicode.IsLetter) {
		return CleanDescription(description)
	}
	return titleCase(s)
}

// dropRunes removes the first n runes of s. Fold keeps one rune per input
// rune for the Latin text banks emit, so prefix lengths line up.
func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}
