package httpfetch

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

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

const testUserAgent = "PluvioRN-Bot/1.0 (+test)"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Fetch_SendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "https://example.org/boletim", r.Header.Get("Referer"))
		_, _ = w.Write([]byte("municipio,chuva\n"))
	}))
	defer srv.Close()

	c := NewClient(testUserAgent, 5*time.Second, discardLogger())
	body, err := c.Fetch(context.Background(), srv.URL+"/b.csv", "https://example.org/boletim")
	require.NoError(t, err)
	assert.Equal(t, "municipio,chuva\n", string(body))
}

func TestClient_Fetch_NoReferer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Referer"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testUserAgent, 5*time.Second, discardLogger())
	_, err := c.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err)
}

func TestClient_Fetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testUserAgent, 5*time.Second, discardLogger())
	_, err := c.Fetch(context.Background(), srv.URL+"/missing.csv", "")
	require.ErrorIs(t, err, domain.ErrNetworkUnavailable)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Fetch_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewClient(testUserAgent, time.Second, discardLogger())
	_, err := c.Fetch(context.Background(), addr, "")
	require.ErrorIs(t, err, domain.ErrNetworkUnavailable)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testUserAgent, 50*time.Millisecond, discardLogger())
	_, err := c.Fetch(context.Background(), srv.URL, "")
	require.ErrorIs(t, err, domain.ErrNetworkUnavailable)
}
