// Package importer implements the bulk CSV import pipeline: tokenizing an
// uploaded file, mapping rows against one of the supported header
// conventions, checking candidates against nearby existing spots, and
// committing accepted rows one at a time while accumulating per-row errors.
package importer

import "strings"

// Tokenize splits raw CSV text into rows of fields.
//
// It is deliberately hand-rolled rather than encoding/csv: spreadsheet
// exports routinely produce quoting that encoding/csv rejects outright
// (stray quotes mid-field, unterminated quotes), and a failed import of a
// whole file over one bad byte is exactly what the pipeline must avoid.
// Tokenize never fails; an unterminated quote runs to end of input and is
// treated as part of the field.
//
// Quoting follows the usual spreadsheet rules: a quoted field may contain
// commas and newlines, and a doubled quote inside a quoted field is a
// literal quote. Fields are trimmed of surrounding whitespace at field
// boundaries. Rows whose fields are all empty are dropped, except the very
// first row, which is always kept so header detection has a stable anchor.
func Tokenize(text string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false
	// sawQuote marks a row whose only content was quote characters, such
	// as a lone "" field; that row is pending even though the field buffer
	// and row slice are both empty.
	sawQuote := false

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		if len(rows) == 0 || !rowEmpty(row) {
			rows = append(rows, row)
		}
		row = nil
		sawQuote = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					// Doubled quote: literal quote character.
					field.WriteByte('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			sawQuote = true
		case ',':
			endField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				endRow()
				i++
			} else {
				field.WriteByte(c)
			}
		case '\n':
			endRow()
		default:
			field.WriteByte(c)
		}
	}

	// Flush whatever is pending at end of input.
	if field.Len() > 0 || len(row) > 0 || sawQuote {
		endRow()
	}

	return rows
}

// rowEmpty reports whether every field in the row is empty.
func rowEmpty(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}
