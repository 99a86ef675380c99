package history

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/matchcast/internal/logger"
)

// ParseHTMLTable reads a saved statistics page. The first table whose header carries the
// date and opponent columns is used, with the same header names as ParseCSV.
func ParseHTMLTable(team string, r io.Reader) ([]*MatchRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", team, err)
	}

	var (
		matches []*MatchRecord
		found   bool
	)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headerCells := table.Find("tr").First().Find("th")
		if headerCells.Length() == 0 {
			headerCells = table.Find("tr").First().Find("td")
		}
		headers := cellTexts(headerCells)
		cols, err := mapHeaders(headers)
		if err != nil {
			logger.Debug("Ignoring table without match columns", team)
			return true
		}
		found = true

		table.Find("tr").Slice(1, goquery.ToEnd).Each(func(i int, tr *goquery.Selection) {
			cells := cellTexts(tr.Find("td"))
			if len(cells) == 0 {
				return
			}
			if len(cells) < len(cols) {
				logger.Warn("Skipping incomplete table row", i+2, team)
				return
			}
			m, err := parseRow(team, cols, cells)
			if err != nil {
				logger.Warn("Failed to parse table row", i+2, team, err)
				return
			}
			matches = append(matches, m)
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("%s: no table with match columns", team)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", team, ErrNoRows)
	}
	SortNewestFirst(matches)
	return matches, nil
}

func cellTexts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}
