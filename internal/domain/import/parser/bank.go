package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/normalizer"
)

// BankGuess identifies the bank that probably produced a statement. It is a
// hint for the UI and never authoritative.
type BankGuess string

const (
	BankNubank        BankGuess = "nubank"
	BankInter         BankGuess = "inter"
	BankItau          BankGuess = "itau"
	BankBradesco      BankGuess = "bradesco"
	BankSantander     BankGuess = "santander"
	BankBancoDoBrasil BankGuess = "bancodobrasil"
	BankCaixa         BankGuess = "caixa"
	BankC6            BankGuess = "c6bank"
	BankGeneric       BankGuess = "generic"
)

// bankSniffBytes is how much of the file is scanned for a bank name.
const bankSniffBytes = 500

type bankPattern struct {
	pattern string
	bank    BankGuess
}

// bankPatterns are listed in priority order. Text is normalized to
// space-separated words before matching, so " inter " only hits the word.
var bankPatterns = []bankPattern{
	{"nubank", BankNubank},
	{"banco inter", BankInter},
	{" inter ", BankInter},
	{"itau", BankItau},
	{"bradesco", BankBradesco},
	{"santander", BankSantander},
	{"banco do brasil", BankBancoDoBrasil},
	{"caixa economica", BankCaixa},
	{"c6 bank", BankC6},
	{"c6bank", BankC6},
}

var bankMatcher = func() *ahocorasick.Matcher {
	dict := make([]string, len(bankPatterns))
	for i, bp := range bankPatterns {
		dict[i] = bp.pattern
	}
	return ahocorasick.NewStringMatcher(dict)
}()

// GuessBankName scans the first bytes of a statement for a known bank name.
// Undecodable bytes are read as Latin-1; the guess is generic when nothing
// matches. It never fails.
func GuessBankName(raw []byte) BankGuess {
	if len(raw) > bankSniffBytes {
		raw = raw[:bankSniffBytes]
	}
	if len(raw) == 0 {
		return BankGeneric
	}

	text := " " + bankText(raw) + " "
	hits := bankMatcher.MatchThreadSafe([]byte(text))
	if len(hits) == 0 {
		return BankGeneric
	}

	best := len(bankPatterns)
	for _, idx := range hits {
		if idx >= 0 && idx < best {
			best = idx
		}
	}
	if best == len(bankPatterns) {
		return BankGeneric
	}
	return bankPatterns[best].bank
}

// bankText decodes raw permissively, folds case and accents, and reduces it
// to lowercase words separated by single spaces.
func bankText(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size <= 1 {
			r = rune(raw[0])
			size = 1
		}
		b.WriteRune(r)
		raw = raw[size:]
	}

	folded := normalizer.Fold(b.String())
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(words, " ")
}
