package httpfetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

// Client fetches bulletin pages and exports over HTTP.
// It implements pipeline.Fetcher.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a client that identifies itself with userAgent on every
// request and gives up after timeout.
func NewClient(userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Client{http: c, logger: logger}
}

// Fetch GETs rawURL and returns the body. A non-empty referer is sent as the
// Referer header. Connection failures and non-2xx statuses wrap
// domain.ErrNetworkUnavailable.
func (c *Client) Fetch(ctx context.Context, rawURL, referer string) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if referer != "" {
		req.SetHeader("Referer", referer)
	}

	start := time.Now()
	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrNetworkUnavailable, rawURL, err)
	}

	c.logger.Debug("http fetch",
		"url", rawURL,
		"status", resp.StatusCode(),
		"bytes", len(resp.Body()),
		"duration", time.Since(start),
	)

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: get %s: status %d", domain.ErrNetworkUnavailable, rawURL, resp.StatusCode())
	}
	return resp.Body(), nil
}
