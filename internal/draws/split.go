package draws

import (
	"encoding/csv"
	"strings"
	"unicode"
)

// SplitRecord tokenizes one line of delimited text. Fields may be double-quoted
// to embed the delimiter; quotes are stripped from the result. Empty fields are
// kept so column positions never shift. A blank line yields no fields.
//
// It never fails: quoting the csv reader cannot make sense of degrades to a
// plain split on the delimiter.
func SplitRecord(line string, delim rune) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	// csv would otherwise swallow empty fields of a whitespace delimiter
	r.TrimLeadingSpace = !unicode.IsSpace(delim)
	r.ReuseRecord = false

	rec, err := r.Read()
	if err != nil || len(rec) == 0 {
		return splitLoose(line, delim)
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	return rec
}

func splitLoose(line string, delim rune) []string {
	parts := strings.Split(line, string(delim))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), `"`))
	}
	return out
}

// splitLines breaks a feed body on \n or \r\n.
func splitLines(body string) []string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
