package parser

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// workbookHeaderRows bounds how far down a sheet the header row may sit.
const workbookHeaderRows = 20

// preferredSheets are tried before the workbook's own sheet order.
var preferredSheets = []string{"extrato", "transactions", "movimentos", "lancamentos", "statement"}

// ParseWorkbook parses an XLSX statement. The first sheet whose header row
// resolves a column mapping is used; cells are read raw so date serials and
// numbers are not reformatted by the sheet's display style.
func (p *StatementParser) ParseWorkbook(raw []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DecodeError{Tried: []string{"xlsx"}, Err: err}
	}
	defer f.Close()

	sheets := orderSheets(f.GetSheetList())
	if len(sheets) == 0 {
		return nil, &DecodeError{Tried: []string{"xlsx"}, Err: errors.New("workbook has no sheets")}
	}

	var firstErr error
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			p.logger.Debug("unreadable sheet", "sheet", sheet, "error", err)
			continue
		}

		headerIdx, mapping, err := findWorkbookHeader(rows)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		records := make([]Record, 0, len(rows)-headerIdx-1)
		for i := headerIdx + 1; i < len(rows); i++ {
			fields := make([]string, len(rows[i]))
			for j, cell := range rows[i] {
				fields[j] = workbookCell(cell, j == mapping.Date)
			}
			records = append(records, Record{Line: i + 1, Fields: fields})
		}

		result := p.parseRecords(records, mapping)
		result.Encoding = "xlsx"
		result.Headers = rows[headerIdx]

		p.logger.Debug("workbook parsed",
			"sheet", sheet,
			"total_rows", result.TotalRows,
			"parsed_rows", len(result.Rows),
			"skipped_rows", result.SkippedRows,
		)
		return result, nil
	}

	if firstErr == nil {
		firstErr = &SchemaError{Missing: []string{string(RoleDate), string(RoleDescription), string(RoleAmount)}}
	}
	return nil, firstErr
}

// orderSheets moves sheets with a statement-like name to the front.
func orderSheets(sheets []string) []string {
	ordered := make([]string, 0, len(sheets))
	used := make(map[string]bool, len(sheets))
	for _, preferred := range preferredSheets {
		for _, sheet := range sheets {
			if !used[sheet] && strings.EqualFold(strings.TrimSpace(sheet), preferred) {
				ordered = append(ordered, sheet)
				used[sheet] = true
			}
		}
	}
	for _, sheet := range sheets {
		if !used[sheet] {
			ordered = append(ordered, sheet)
		}
	}
	return ordered
}

// findWorkbookHeader returns the first row that resolves a mapping. When none
// does, the error is the schema error of the first non-empty row.
func findWorkbookHeader(rows [][]string) (int, ColumnMapping, error) {
	var firstErr error
	for i, row := range rows {
		if i >= workbookHeaderRows {
			break
		}
		if isBlankRow(row) {
			continue
		}
		mapping, err := ResolveColumns(row)
		if err == nil {
			return i, mapping, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &SchemaError{Missing: []string{string(RoleDate), string(RoleDescription), string(RoleAmount)}}
	}
	return 0, ColumnMapping{}, firstErr
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// workbookCell converts raw cell values into the text forms the row rules
// expect: date serials become ISO dates and binary float noise is trimmed.
func workbookCell(cell string, isDate bool) string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return cell
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	if isDate {
		if f < 1 || f > 2958465 {
			return cell
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return cell
		}
		return t.Format("2006-01-02")
	}
	if strings.ContainsAny(cell, "eE") || fractionDigits(cell) > 6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return cell
}

func fractionDigits(s string) int {
	idx := strings.IndexByte(s, '.')
	if idx < 0 {
		return 0
	}
	return len(s) - idx - 1
}
