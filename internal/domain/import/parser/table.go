package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Record is one data row of a statement with its 1-based source line.
type Record struct {
	Line   int
	Fields []string
}

// Field returns the trimmed cell at i; cells missing from ragged rows read
// as empty.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

// readRecords reads the data rows that follow the header line. Rows the CSV
// reader cannot split are reported as skips.
func readRecords(body string, delimiter rune, headerLine int) ([]Record, []RowSkip) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var (
		records []Record
		skips   []RowSkip
	)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			line := headerLine
			if errors.As(err, &perr) {
				line += perr.StartLine
			}
			skips = append(skips, RowSkip{Line: line, Reason: "malformed row: " + err.Error()})
			continue
		}

		line, _ := reader.FieldPos(0)
		records = append(records, Record{Line: headerLine + line, Fields: fields})
	}
	return records, skips
}
