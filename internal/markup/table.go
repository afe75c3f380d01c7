package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

// ParseTable extracts header and body cell texts from the tables in an HTML
// fragment, typically a region's content container.
func ParseTable(fragment string) (domain.Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return domain.Table{}, fmt.Errorf("parse table fragment: %w", err)
	}
	if doc.Find("table").Length() == 0 {
		return domain.Table{}, fmt.Errorf("%w: fragment has no table", domain.ErrTableNotRendered)
	}

	var t domain.Table
	doc.Find("table thead th, table tr th").Each(func(_ int, s *goquery.Selection) {
		t.Headers = append(t.Headers, strings.TrimSpace(s.Text()))
	})
	doc.Find("table tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := make([]string, 0, tr.Children().Length())
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, collapseSpace(td.Text()))
		})
		t.Rows = append(t.Rows, cells)
	})
	return t, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
