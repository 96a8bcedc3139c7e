package draws

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var wsRe = regexp.MustCompile(`\s+`)

// FromHTMLTable normalizes a results page. The first <table> whose header row
// carries the marker is read like a tabular feed.
func (n *Normalizer) FromHTMLTable(body string, limit int) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaRejected, err)
	}

	var (
		table  *goquery.Selection
		header []string
	)
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		h := headerCells(t)
		if len(h) > 0 && n.hasMarker(strings.Join(h, " ")) {
			table, header = t, h
			return false
		}
		return true
	})
	if table == nil {
		return nil, fmt.Errorf("%w: no results table with %q header", ErrSchemaRejected, n.marker())
	}

	rows := func(yield func([]string) bool) {
		table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			if tr.Find("td").Length() == 0 {
				return true // header rows are th-only
			}
			return yield(rowCells(tr))
		})
	}
	return n.mapRows(header, rows, limit)
}

func headerCells(t *goquery.Selection) []string {
	row := t.Find("thead tr").First()
	if row.Length() == 0 {
		row = t.Find("tr").First()
	}
	if row.Find("th").Length() == 0 {
		return nil
	}
	return rowCells(row)
}

func rowCells(tr *goquery.Selection) []string {
	var out []string
	tr.Children().Filter("th,td").Each(func(_ int, c *goquery.Selection) {
		out = append(out, cleanCell(c.Text()))
	})
	return out
}

func cleanCell(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
