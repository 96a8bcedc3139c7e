package draws

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// ErrSchemaRejected means the feed as a whole does not look like a draw feed.
// Individual bad rows never produce it; they are skipped.
var ErrSchemaRejected = errors.New("unexpected feed schema")

const DefaultMarker = "bonus"

// Normalizer turns raw feed bodies into Records on the target weekday.
// All of its methods are pure.
type Normalizer struct {
	Target    time.Weekday
	Columns   ColumnMapping
	Marker    string // header must contain this, case-insensitive
	Delimiter rune
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Target:    time.Saturday,
		Columns:   DefaultColumns(),
		Marker:    DefaultMarker,
		Delimiter: ',',
	}
}

// FromTabularText normalizes a delimited text feed whose first non-empty line is
// a header. The feed is newest-first, so stopping at limit keeps the newest rows.
func (n *Normalizer) FromTabularText(body string, limit int) ([]Record, error) {
	lines := splitLines(body)
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return nil, fmt.Errorf("%w: no header row", ErrSchemaRejected)
	}
	if !n.hasMarker(lines[start]) {
		return nil, fmt.Errorf("%w: header %q lacks %q", ErrSchemaRejected, lines[start], n.marker())
	}
	header := SplitRecord(lines[start], n.delim())

	rows := func(yield func([]string) bool) {
		for _, line := range lines[start+1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(SplitRecord(line, n.delim())) {
				return
			}
		}
	}
	return n.mapRows(header, rows, limit)
}

// mapRows applies the column mapping to each row until limit records are kept.
func (n *Normalizer) mapRows(header []string, rows iter.Seq[[]string], limit int) ([]Record, error) {
	cols, err := n.Columns.resolve(header)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, max(limit, 0))
	if limit <= 0 {
		return out, nil
	}
	for cells := range rows {
		rec, ok := n.recordFromCells(cells, cols)
		if !ok {
			continue
		}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (n *Normalizer) recordFromCells(cells []string, cols resolvedColumns) (Record, bool) {
	if len(cells) == 0 {
		return Record{}, false
	}
	raw := cell(cells, cols.date)
	if raw == "" {
		return Record{}, false
	}
	t, err := ParseDate(raw)
	if err != nil || CheckWeekday(t, n.Target) != nil {
		return Record{}, false
	}
	bonus, ok := Atoi(cell(cells, cols.bonus))
	if !ok {
		return Record{}, false
	}

	rec := Record{Date: FormatDate(t), BonusNumber: bonus, Numbers: make([]int, 0, len(cols.numbers))}
	for _, idx := range cols.numbers {
		if v, ok := Atoi(cell(cells, idx)); ok {
			rec.Numbers = append(rec.Numbers, v)
		}
	}
	if v, ok := Atoi(cell(cells, cols.drawNumber)); ok {
		rec.DrawNumber = intPtr(v)
	}
	return rec, true
}

func (n *Normalizer) hasMarker(header string) bool {
	return strings.Contains(strings.ToLower(header), strings.ToLower(n.marker()))
}

func (n *Normalizer) marker() string {
	if n.Marker == "" {
		return DefaultMarker
	}
	return n.Marker
}

func (n *Normalizer) delim() rune {
	if n.Delimiter == 0 {
		return ','
	}
	return n.Delimiter
}
