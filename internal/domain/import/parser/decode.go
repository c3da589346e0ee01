package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/sniffer"
)

// DefaultFallbackEncodings are tried after the caller's hint.
var DefaultFallbackEncodings = []string{"utf-8", "latin1", "iso-8859-1", "windows-1252"}

var (
	errUnknownEncoding = errors.New("unknown encoding")
	errC1Controls      = errors.New("decoded text contains C1 control characters")
	errReplacement     = errors.New("decoded text contains undefined characters")
	errBinary          = errors.New("input looks binary")
)

// decoded is the winning rendering of a statement's bytes.
type decoded struct {
	text     string
	encoding string
	layout   *sniffer.FileConfig
}

// candidateEncodings resolves the hint and fallbacks through the IANA
// registry, dropping names that resolve to an encoding already listed.
func candidateEncodings(hint string, fallbacks []string) (names []string, encs []encoding.Encoding, unknown []string) {
	seen := make(map[string]bool)
	all := fallbacks
	if hint = strings.TrimSpace(hint); hint != "" {
		all = append([]string{hint}, fallbacks...)
	}

	for _, name := range all {
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			unknown = append(unknown, name)
			continue
		}
		canonical, err := ianaindex.MIME.Name(enc)
		if err != nil {
			canonical, err = ianaindex.IANA.Name(enc)
		}
		if err != nil {
			canonical = strings.ToUpper(name)
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		names = append(names, canonical)
		encs = append(encs, enc)
	}
	return names, encs, unknown
}

// decode tries each candidate encoding in order and returns the first one
// that decodes cleanly and yields a readable header row.
func (p *StatementParser) decode(raw []byte) (*decoded, error) {
	names, encs, unknown := candidateEncodings(p.config.EncodingHint, p.config.FallbackEncodings)
	for _, name := range unknown {
		p.logger.Debug("ignoring unknown encoding", "encoding", name)
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, &DecodeError{Err: sniffer.ErrEmptyFile}
	}

	var lastErr error = errUnknownEncoding
	for i, enc := range encs {
		text, err := decodeWith(enc, names[i], raw)
		if err != nil {
			p.logger.Debug("encoding rejected", "encoding", names[i], "error", err)
			lastErr = fmt.Errorf("%s: %w", names[i], err)
			continue
		}

		layout, err := sniffer.DetectConfigWithOptions(text, &sniffer.DetectOptions{
			HeaderRowIndex: p.config.HeaderRowIndex,
			Delimiter:      p.config.Delimiter,
		})
		if err != nil {
			p.logger.Debug("no table after decoding", "encoding", names[i], "error", err)
			lastErr = fmt.Errorf("%s: %w", names[i], err)
			continue
		}

		return &decoded{text: text, encoding: names[i], layout: layout}, nil
	}

	return nil, &DecodeError{Tried: names, Err: lastErr}
}

// maxControlShare bounds the share of C0 control runes, other than tab, CR
// and LF, that a single-byte reading may contain before the input counts as
// binary.
const maxControlShare = 0.1

// decodeWith renders raw with enc. UTF-8 is validated strictly. Single-byte
// charsets are rejected when they produce C1 controls or undefined
// characters, which is how a Latin-1 reading of a Windows-1252 file shows
// up, or when control runes dominate the text. A trailing DOS end-of-file
// marker is dropped.
func decodeWith(enc encoding.Encoding, name string, raw []byte) (string, error) {
	var (
		text string
		err  error
	)
	if name == "UTF-8" {
		text, _, err = transform.String(encoding.UTF8Validator, string(raw))
	} else {
		text, _, err = transform.String(enc.NewDecoder(), string(raw))
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.TrimRight(text, "\x1a")

	if name == "UTF-8" {
		return text, nil
	}

	total, controls := 0, 0
	for _, r := range text {
		total++
		switch {
		case r >= 0x80 && r <= 0x9f:
			return "", errC1Controls
		case r == '\uFFFD':
			return "", errReplacement
		case r == '\t' || r == '\n' || r == '\r':
		case unicode.IsControl(r):
			controls++
		}
	}
	if total > 0 && float64(controls) > maxControlShare*float64(total) {
		return "", errBinary
	}
	return text, nil
}
