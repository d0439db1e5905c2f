// Package csvscan tokenizes delimited text into a header row and field rows.
//
// The dialect is permissive: a quote only opens a quoted field at the start
// of a field, a doubled quote inside a quoted field is a literal quote, and
// a quote appearing mid-field is treated as a literal character. This
// matches the exports being ingested, which encoding/csv rejects as bare
// quotes.
package csvscan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoHeader indicates the input contained no records at all. Callers must
// treat this as a fatal input error rather than an empty file with data.
var ErrNoHeader = errors.New("csv input has no header row")

// ErrColumnMissing indicates a required column is absent from the header.
var ErrColumnMissing = errors.New("required column missing from header")

// Document is a tokenized CSV file: one header row plus zero or more rows.
// Rows may be shorter than the header; callers decide how to treat them.
type Document struct {
	Header []string
	Rows   [][]string
}

// Column resolves a header name to its field index. Resolution happens once
// per file; a missing required column fails the whole file up front instead
// of failing on every row.
func (d *Document) Column(name string) (int, error) {
	for i, h := range d.Header {
		if h == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrColumnMissing, name)
}

// Scan tokenizes raw CSV text. Line endings are normalized to LF before
// scanning. The first record becomes the header; an input with no records
// returns ErrNoHeader.
func Scan(text string) (*Document, error) {
	records := tokenize(strings.ReplaceAll(text, "\r\n", "\n"))
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	return &Document{Header: records[0], Rows: records[1:]}, nil
}

// tokenize runs the two-state (unquoted/quoted) scanner over normalized text.
func tokenize(text string) [][]string {
	var (
		records      [][]string
		fields       []string
		field        strings.Builder
		quoted       bool
		atFieldStart = true
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
		atFieldStart = true
	}

	endRecord := func() {
		endField()
		records = append(records, fields)
		fields = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if quoted {
			if ch != '"' {
				field.WriteByte(ch)

				continue
			}

			// A doubled quote is one literal quote; a single quote closes.
			if i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				quoted = false
			}

			continue
		}

		switch ch {
		case '"':
			if atFieldStart {
				quoted = true
				atFieldStart = false
			} else {
				field.WriteByte('"')
			}
		case ',':
			endField()
		case '\n':
			endRecord()
		default:
			field.WriteByte(ch)
			atFieldStart = false
		}
	}

	// Trailing record without a terminating newline.
	if field.Len() > 0 || len(fields) > 0 {
		endRecord()
	}

	return records
}
