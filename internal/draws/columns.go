package draws

import (
	"fmt"
	"strconv"
	"strings"
)

// Column names a feed column. Names are header aliases tried in order; Index is
// the declared position used when none of them appears in the header.
type Column struct {
	Names []string
	Index int // -1 when the column has no fixed position
}

// ColumnMapping declares where each draw field lives in a tabular feed.
//
// The upstream layout has shifted before, so positions are only a fallback:
// every column is first looked up by name in the header row.
type ColumnMapping struct {
	Date       Column
	Bonus      Column
	Numbers    []Column
	DrawNumber Column
}

// DefaultColumns matches the national-lottery draw-history CSV:
//
//	DrawDate,Ball 1,...,Ball 6,Bonus Ball,Ball Set,Machine,DrawNumber
func DefaultColumns() ColumnMapping {
	m := ColumnMapping{
		Date:       Column{Names: []string{"DrawDate", "Draw Date", "Date"}, Index: 0},
		Bonus:      Column{Names: []string{"Bonus Ball", "BonusBall", "Bonus"}, Index: 7},
		DrawNumber: Column{Names: []string{"DrawNumber", "Draw Number", "Draw No"}, Index: 10},
	}
	for i := 1; i <= 6; i++ {
		n := strconv.Itoa(i)
		m.Numbers = append(m.Numbers, Column{Names: []string{"Ball " + n, "Ball" + n}, Index: i})
	}
	return m
}

type resolvedColumns struct {
	date       int
	bonus      int
	numbers    []int
	drawNumber int
}

// resolve finds each column in the header. Name matches are taken first; a
// column without one falls back to its declared position, unless that position
// is inside the header and already claimed by a named column.
func (m ColumnMapping) resolve(header []string) (resolvedColumns, error) {
	all := append([]Column{m.Date, m.Bonus, m.DrawNumber}, m.Numbers...)
	idx := make([]int, len(all))
	claimed := make(map[int]bool, len(all))
	for i, c := range all {
		idx[i] = c.nameIndex(header)
		if idx[i] >= 0 {
			claimed[idx[i]] = true
		}
	}
	for i, c := range all {
		if idx[i] >= 0 {
			continue
		}
		if c.Index >= 0 && c.Index < len(header) && !claimed[c.Index] {
			idx[i] = c.Index
			claimed[c.Index] = true
		} else {
			idx[i] = -1
		}
	}

	rc := resolvedColumns{date: idx[0], bonus: idx[1], drawNumber: idx[2]}
	if rc.date < 0 {
		return rc, fmt.Errorf("%w: date column %v not in header", ErrSchemaRejected, m.Date.Names)
	}
	if rc.bonus < 0 {
		return rc, fmt.Errorf("%w: bonus column %v not in header", ErrSchemaRejected, m.Bonus.Names)
	}
	for _, i := range idx[3:] {
		if i >= 0 {
			rc.numbers = append(rc.numbers, i)
		}
	}
	return rc, nil
}

func (c Column) nameIndex(header []string) int {
	for _, name := range c.Names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}
