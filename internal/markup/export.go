// Package markup reads bulletin HTML: it finds official export links and
// turns rendered tables into raw rows.
package markup

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

var (
	// csvHrefRe and txtHrefRe match an export extension at the end of a URL
	// path, optionally followed by a query string or fragment.
	csvHrefRe = regexp.MustCompile(`(?i)\.csv([?#]|$)`)
	txtHrefRe = regexp.MustCompile(`(?i)\.txt([?#]|$)`)

	// csvOnclickRe and txtOnclickRe pull a URL out of inline handlers such as
	// onclick="window.location='/boletim/2024-05-01.csv'".
	csvOnclickRe = regexp.MustCompile(`(?i)[^\s'"()]+\.csv(?:[?#][^\s'"()]*)?`)
	txtOnclickRe = regexp.MustCompile(`(?i)[^\s'"()]+\.txt(?:[?#][^\s'"()]*)?`)
)

// ExportLink is a resolved, absolute URL to an official export.
type ExportLink struct {
	Kind domain.ExportKind
	URL  string
}

// ExportLinks holds the first CSV and first TXT export found in a page.
// Empty fields mean no link of that kind.
type ExportLinks struct {
	CSV string
	TXT string
}

// Candidates returns the links to try, CSV before TXT.
func (l ExportLinks) Candidates() []ExportLink {
	var out []ExportLink
	if l.CSV != "" {
		out = append(out, ExportLink{Kind: domain.ExportCSV, URL: l.CSV})
	}
	if l.TXT != "" {
		out = append(out, ExportLink{Kind: domain.ExportTXT, URL: l.TXT})
	}
	return out
}

// Best returns the preferred export link: the CSV if any, else the TXT.
func (l ExportLinks) Best() (ExportLink, bool) {
	c := l.Candidates()
	if len(c) == 0 {
		return ExportLink{}, false
	}
	return c[0], true
}

// Empty reports whether no export link was found.
func (l ExportLinks) Empty() bool {
	return l.CSV == "" && l.TXT == ""
}

// ResolveExportLinks searches anchors and buttons for CSV/TXT exports.
// Href attributes are searched before onclick handlers. Relative URLs are
// resolved against base.
func ResolveExportLinks(markup, base string) (ExportLinks, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ExportLinks{}, fmt.Errorf("parse base url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ExportLinks{}, fmt.Errorf("parse markup: %w", err)
	}

	var hrefs, handlers []string
	doc.Find("a, button").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, strings.TrimSpace(href))
		}
		if onclick, ok := s.Attr("onclick"); ok {
			handlers = append(handlers, onclick)
		}
	})

	return ExportLinks{
		CSV: findLink(baseURL, hrefs, handlers, csvHrefRe, csvOnclickRe),
		TXT: findLink(baseURL, hrefs, handlers, txtHrefRe, txtOnclickRe),
	}, nil
}

func findLink(base *url.URL, hrefs, handlers []string, hrefRe, onclickRe *regexp.Regexp) string {
	for _, href := range hrefs {
		if hrefRe.MatchString(href) {
			if u, ok := resolve(base, href); ok {
				return u
			}
		}
	}
	for _, h := range handlers {
		if m := onclickRe.FindString(h); m != "" {
			if u, ok := resolve(base, m); ok {
				return u
			}
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(u).String(), true
}
