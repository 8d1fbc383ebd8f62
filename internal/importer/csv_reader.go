package importer

import "strings"

// readRecords is a hand-rolled RFC 4180-ish reader. encoding/csv is too
// strict for the files users actually upload (ragged rows, stray quotes),
// and the one correctness requirement that matters here (quoted fields
// containing commas, newlines and "" escapes) is small enough to own.
//
// The reader is lenient by design: a quote opening mid-field starts a
// quoted run, an unterminated quote runs to end of input, and rows may
// have differing field counts. CRLF collapses to LF inside quoted fields.
func readRecords(input string) [][]string {
	var (
		records  [][]string
		record   []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		records = append(records, record)
		record = nil
	}

	for i := 0; i < len(input); i++ {
		c := input[i]

		if inQuotes {
			switch {
			case c == '"' && i+1 < len(input) && input[i+1] == '"':
				field.WriteByte('"')
				i++
			case c == '"':
				inQuotes = false
			case c == '\r' && i+1 < len(input) && input[i+1] == '\n':
				field.WriteByte('\n')
				i++
			default:
				field.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			endField()
		case '\n':
			endRecord()
		case '\r':
			// handled as part of the following '\n'
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(record) > 0 {
		endRecord()
	}

	return records
}
