package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bulletinServer serves page at /boletim/diario and each entry of files at
// its path.
func bulletinServer(page string, files map[string]string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/boletim/diario", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	})
	for path, body := range files {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
	}
	return httptest.NewServer(mux)
}

// tabPage is a rendered page whose regions either show a table or never
// render one.
type tabPage struct {
	content string
	tables  map[string]string // region ID -> content container markup
}

func (p *tabPage) region(selector string) string {
	for _, r := range domain.Regions {
		if selector == r.TabSelector() || selector == r.ContentSelector() || selector == r.TableSelector() {
			return r.ID
		}
	}
	return ""
}

func (p *tabPage) Has(_ context.Context, selector string) (bool, error) {
	return p.region(selector) != "", nil
}

func (p *tabPage) Click(context.Context, string) error { return nil }

func (p *tabPage) WaitFor(ctx context.Context, selector string) error {
	if _, ok := p.tables[p.region(selector)]; ok {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (p *tabPage) HTML(_ context.Context, selector string) (string, error) {
	frag, ok := p.tables[p.region(selector)]
	if !ok {
		return "", fmt.Errorf("no element matches %q", selector)
	}
	return frag, nil
}

func (p *tabPage) Content(context.Context) (string, error) { return p.content, nil }

func (p *tabPage) Close() error { return nil }

type pageRenderer struct {
	page domain.Page
}

func (r pageRenderer) Open(context.Context, string) (domain.Page, error) {
	return r.page, nil
}

// natalTables renders one "Natal, 12,5" row in every region.
func natalTables() map[string]string {
	out := make(map[string]string, len(domain.Regions))
	for _, r := range domain.Regions {
		out[r.ID] = fmt.Sprintf(`<div id="%s-content"><table>
<thead><tr><th>Município</th><th>Chuva (mm)</th></tr></thead>
<tbody><tr><td>Natal</td><td>12,5</td></tr></tbody>
</table></div>`, r.ID)
	}
	return out
}
