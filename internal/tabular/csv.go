// Package tabular implements the tolerant CSV reader shared by the
// CSV-based importers.
//
// Real-world library exports are frequently malformed, so this reader is
// deliberately looser than encoding/csv: unterminated quotes never abort the
// parse, rows may have any number of fields, and every field is trimmed.
package tabular

import "strings"

// Parse splits raw text into rows of fields.
//
// Rules:
//   - fields are separated by commas, rows by \n, \r\n or a bare \r
//   - a field wrapped in double quotes may embed commas and newlines
//   - two consecutive double quotes inside a quoted field collapse to one
//   - whitespace around each field is trimmed
//   - rows whose fields are all empty after trimming are dropped
//
// Malformed input (an unterminated quote) does not produce an error: the
// reader keeps consuming as if still quoted and recovers whatever structure
// remains. Best effort, not strict RFC 4180.
func Parse(text string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		if !rowIsBlank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes {
				if i+1 < len(text) && text[i+1] == '"' {
					// Escaped quote.
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				inQuotes = true
			}
		case ch == ',' && !inQuotes:
			endField()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			endRow()
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		default:
			field.WriteByte(ch)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}

func rowIsBlank(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}

// LooksLikeHeader reports whether a row reads like a column-name header
// rather than data. Importers whose exports do not carry a fixed documented
// header probe the first row with this before deciding to skip it.
func LooksLikeHeader(row []string, keywords ...string) bool {
	if len(row) == 0 {
		return false
	}
	joined := strings.ToLower(strings.Join(row, " "))
	for _, kw := range keywords {
		if strings.Contains(joined, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
