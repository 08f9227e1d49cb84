package probe

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"
)

// maxSampleRows caps the rows kept from a sample.
const maxSampleRows = 150000

// readCSVSample parses a (possibly truncated) CSV sample. It skips blank and
// malformed lines, takes the first usable record as the header and drops data
// rows whose width differs from it.
func readCSVSample(data []byte, delim rune) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var headers []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return []string{}, [][]string{}, nil
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		headers = stripUTF8BOM(rec)
		break
	}

	rows := make([][]string, 0, 64)
	for len(rows) < maxSampleRows {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) != len(headers) {
			continue
		}
		rows = append(rows, rec)
	}
	return headers, rows, nil
}

// stripUTF8BOM removes a UTF-8 BOM from the first header field.
func stripUTF8BOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}
	return headers
}

// columnsOf transposes rows into per-column value slices.
func columnsOf(width int, rows [][]string) [][]string {
	cols := make([][]string, width)
	for i := range cols {
		cols[i] = make([]string, 0, len(rows))
	}
	for _, row := range rows {
		for i := 0; i < width && i < len(row); i++ {
			cols[i] = append(cols[i], row[i])
		}
	}
	return cols
}

// DecodeDelimiter converts a flag value into a delimiter rune, defaulting to
// ','. The literal "\t" and "tab" select a tab.
func DecodeDelimiter(s string) rune {
	switch s {
	case "":
		return ','
	case `\t`, "tab":
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ','
	}
	return r
}
