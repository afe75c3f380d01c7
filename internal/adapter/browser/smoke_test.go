//go:build browser

package browser

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive a real headless Chrome (downloaded by Rod on first use).
// Run with: go test -tags=browser ./internal/adapter/browser/ -v -count=1

const tabbedPage = `<!doctype html>
<html><body>
<a id="leste_potiguar" href="#" onclick="render(); return false;">Leste Potiguar</a>
<div id="leste_potiguar-content"></div>
<script>
function render() {
  setTimeout(function () {
    document.getElementById('leste_potiguar-content').innerHTML =
      '<table><thead><tr><th>Município</th><th>Chuva (mm)</th></tr></thead>' +
      '<tbody><tr><td>Natal</td><td>12,5</td></tr></tbody></table>';
  }, 100);
}
</script>
</body></html>`

func TestSmoke_RenderClickAndWait(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(tabbedPage))
	}))
	defer srv.Close()

	r := NewRenderer(Config{
		UserAgent:         "PluvioRN-Bot/1.0 (+smoke)",
		NavigationTimeout: 30 * time.Second,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	page, err := r.Open(ctx, srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = page.Close() })
	assert.Equal(t, "PluvioRN-Bot/1.0 (+smoke)", gotUA)

	has, err := page.Has(ctx, "a#leste_potiguar")
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, page.Click(ctx, "a#leste_potiguar"))

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, page.WaitFor(waitCtx, "#leste_potiguar-content table"))

	html, err := page.HTML(ctx, "#leste_potiguar-content")
	require.NoError(t, err)
	assert.Contains(t, html, "<td>12,5</td>")

	content, err := page.Content(ctx)
	require.NoError(t, err)
	assert.Contains(t, content, "leste_potiguar-content")
}

func TestSmoke_WaitForTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="x"></div></body></html>`))
	}))
	defer srv.Close()

	r := NewRenderer(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	t.Cleanup(func() { _ = r.Close() })

	page, err := r.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = page.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.Error(t, page.WaitFor(ctx, "#x table"))
}
