// Package sniffer detects the layout of delimited statement exports: the
// field delimiter, the header row (banks often prepend account metadata) and
// a fingerprint of the header names.
package sniffer

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/normalizer"
)

// maxHeaderSearchLines bounds how far into the file the header row may sit.
const maxHeaderSearchLines = 20

// headerKeywords are folded word tokens that mark a header cell.
var headerKeywords = map[string]bool{
	// Portuguese
	"data": true, "dt": true, "historico": true, "descricao": true, "lancamento": true,
	"valor": true, "debito": true, "credito": true, "saldo": true, "documento": true,
	"categoria": true, "estabelecimento": true,
	// English
	"date": true, "description": true, "amount": true, "debit": true, "credit": true,
	"balance": true, "category": true, "merchant": true, "memo": true,
	// Spanish
	"fecha": true, "descripcion": true, "importe": true, "cargo": true, "abono": true,
}

// delimiters in tie-break order; comma wins when nothing else is clearer.
var delimiters = []rune{',', ';', '\t', '|'}

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find data headers")
)

// FileConfig holds the detected layout of a delimited export.
type FileConfig struct {
	Delimiter   rune     // field delimiter
	SkipLines   int      // metadata lines before the header row
	Headers     []string // trimmed header cells
	Fingerprint string   // SHA256 of the folded header names
	DataOffset  int      // byte offset of the first line after the header
}

// HeaderLine is the 1-based line number of the header row.
func (c *FileConfig) HeaderLine() int {
	return c.SkipLines + 1
}

// DetectOptions allows callers to override header row or delimiter detection.
type DetectOptions struct {
	// HeaderRowIndex is a 0-based index for the header row. Set to -1 to auto-detect.
	HeaderRowIndex int
	// Delimiter overrides the detected delimiter when non-zero.
	Delimiter rune
}

// DetectConfigWithOptions analyzes decoded statement text with optional overrides.
func DetectConfigWithOptions(text string, opts *DetectOptions) (*FileConfig, error) {
	if strings.TrimSpace(strings.TrimPrefix(text, "\uFEFF")) == "" {
		return nil, ErrEmptyFile
	}
	if opts == nil {
		opts = &DetectOptions{HeaderRowIndex: -1}
	}

	lines := strings.SplitAfter(text, "\n")

	skipLines := opts.HeaderRowIndex
	if skipLines < 0 {
		skipLines = findHeaderRow(lines, opts.Delimiter)
	}
	if skipLines >= len(lines) {
		return nil, ErrNoHeadersFound
	}

	headerLine := cleanLine(lines[skipLines], skipLines == 0)
	if headerLine == "" {
		return nil, ErrNoHeadersFound
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter, _ = detectDelimiter(headerLine)
	}

	headers, err := splitRecord(headerLine, delimiter)
	if err != nil {
		return nil, errors.Join(ErrNoHeadersFound, err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	offset := 0
	for _, l := range lines[:skipLines+1] {
		offset += len(l)
	}

	return &FileConfig{
		Delimiter:   delimiter,
		SkipLines:   skipLines,
		Headers:     headers,
		Fingerprint: generateFingerprint(headers),
		DataOffset:  offset,
	}, nil
}

// findHeaderRow returns the index of the line with the most header-like
// cells, or the first non-empty line when no line has at least two.
func findHeaderRow(lines []string, forced rune) int {
	first := -1
	bestIndex, bestScore := -1, 1

	for i, line := range lines {
		if i >= maxHeaderSearchLines {
			break
		}
		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}
		if first < 0 {
			first = i
		}

		delimiter := forced
		if delimiter == 0 {
			delimiter, _ = detectDelimiter(line)
		}
		cells, err := splitRecord(line, delimiter)
		if err != nil {
			continue
		}

		score := 0
		for _, cell := range cells {
			if isHeaderCell(cell) {
				score++
			}
		}
		if score > bestScore {
			bestIndex, bestScore = i, score
		}
	}

	if bestIndex >= 0 {
		return bestIndex
	}
	if first >= 0 {
		return first
	}
	return 0
}

func isHeaderCell(cell string) bool {
	folded := normalizer.Fold(cell)
	if headerKeywords[folded] {
		return true
	}
	for _, token := range tokenize(folded) {
		if headerKeywords[token] {
			return true
		}
	}
	return false
}

// tokenize splits folded header text into alphanumeric word tokens.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r\n")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

// detectDelimiter counts candidate delimiters outside quoted sections and
// returns the most frequent one, comma when none occurs.
func detectDelimiter(line string) (rune, int) {
	counts := make(map[rune]int, len(delimiters))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := delimiters[0], 0
	for _, d := range delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best, bestCount
}

func splitRecord(line string, delimiter rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.Read()
}

// generateFingerprint hashes the folded header names so exports from the same
// bank layout share a fingerprint.
func generateFingerprint(headers []string) string {
	normalized := make([]string, 0, len(headers))
	for _, h := range headers {
		clean := strings.Join(tokenize(normalizer.Fold(h)), "")
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
