package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pluviorn/emparn-fetch/internal/domain"
	"github.com/pluviorn/emparn-fetch/internal/markup"
	"github.com/pluviorn/emparn-fetch/internal/observability"
)

// Fetcher downloads the body behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, referer string) ([]byte, error)
}

// Renderer loads a URL in a browser and returns the rendered page.
type Renderer interface {
	Open(ctx context.Context, pageURL string) (domain.Page, error)
}

// Store persists run artifacts.
type Store interface {
	SaveExport(ctx context.Context, exp domain.Export) ([]string, error)
	SaveObservations(ctx context.Context, obs []domain.Observation) ([]string, error)
	SaveDiagnostic(ctx context.Context, markup string) (string, error)
}

// Publisher forwards scraped observations downstream.
type Publisher interface {
	Publish(ctx context.Context, obs []domain.Observation) error
}

// Source names where a run's data came from.
type Source string

const (
	SourceExport Source = "export"
	SourceDOM    Source = "dom"
)

// Result describes the artifacts of a successful run.
type Result struct {
	Source       Source
	ExportKind   domain.ExportKind
	Observations []domain.Observation
	Files        []string
}

// Options tunes a run. Zero values fall back to defaults.
type Options struct {
	BulletinURL   string
	FetchAttempts int
	FetchBackoff  time.Duration
	TabTimeout    time.Duration
	Regions       []domain.Region
}

func (o *Options) defaults() {
	if o.FetchAttempts <= 0 {
		o.FetchAttempts = 3
	}
	if o.FetchBackoff <= 0 {
		o.FetchBackoff = 2 * time.Second
	}
	if o.TabTimeout <= 0 {
		o.TabTimeout = 30 * time.Second
	}
	if len(o.Regions) == 0 {
		o.Regions = domain.Regions
	}
}

// Option configures optional collaborators of an Extractor.
type Option func(*Extractor)

// WithRenderer enables the browser fallback.
func WithRenderer(r Renderer) Option {
	return func(e *Extractor) { e.renderer = r }
}

// WithPublisher forwards scraped observations to p.
func WithPublisher(p Publisher) Option {
	return func(e *Extractor) { e.publisher = p }
}

// WithGeocoder enriches scraped observations with coordinates.
func WithGeocoder(g domain.Geocoder) Option {
	return func(e *Extractor) { e.geocoder = g }
}

// Extractor runs one bulletin fetch: official export first, rendered tables
// as a fallback.
type Extractor struct {
	fetcher   Fetcher
	store     Store
	renderer  Renderer
	publisher Publisher
	geocoder  domain.Geocoder
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
}

// New creates an Extractor. Without WithRenderer a page lacking an export
// link is a failed run.
func New(f Fetcher, s Store, opts Options, logger *slog.Logger, metrics *observability.Metrics, options ...Option) *Extractor {
	opts.defaults()
	e := &Extractor{
		fetcher: f,
		store:   s,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Run executes the fetch once. It returns an error wrapping
// domain.ErrNetworkUnavailable when the bulletin page cannot be loaded and
// domain.ErrNoDataProduced when neither an export nor any row was obtained.
func (e *Extractor) Run(ctx context.Context) (Result, error) {
	e.logger.Info("bulletin fetch started", "url", e.opts.BulletinURL, "browser", e.renderer != nil)

	page, err := e.fetchPage(ctx)
	if err != nil {
		return Result{}, err
	}
	static := string(page)

	res, ok, err := e.exportFrom(ctx, static, "static")
	if err != nil || ok {
		return res, err
	}

	if e.renderer == nil {
		e.logger.Error("no export available and browser fallback disabled")
		return e.fail(ctx, static, domain.ErrExportNotFound)
	}
	return e.scrape(ctx, static)
}

// fetchPage loads the bulletin page, retrying with linear backoff.
func (e *Extractor) fetchPage(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= e.opts.FetchAttempts; attempt++ {
		e.metrics.PageFetchAttempts.Inc()
		body, err := e.fetcher.Fetch(ctx, e.opts.BulletinURL, "")
		if err == nil {
			e.logger.Debug("bulletin page loaded", "attempt", attempt, "bytes", len(body))
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		e.logger.Warn("bulletin page fetch failed",
			"attempt", attempt,
			"max_attempts", e.opts.FetchAttempts,
			"error", err,
		)
		if attempt < e.opts.FetchAttempts && !sleepWithContext(ctx, backoffFor(attempt, e.opts.FetchBackoff)) {
			break
		}
	}
	return nil, fmt.Errorf("fetch bulletin page: %w", lastErr)
}

// exportFrom resolves export links in markup and downloads the first one
// that succeeds, CSV before TXT. ok is false when nothing was saved.
func (e *Extractor) exportFrom(ctx context.Context, page, stage string) (res Result, ok bool, err error) {
	links, err := markup.ResolveExportLinks(page, e.opts.BulletinURL)
	if err != nil {
		e.logger.Warn("resolve export links failed", "stage", stage, "error", err)
		return Result{}, false, nil
	}
	best, found := links.Best()
	if !found {
		e.logger.Info("no export link in page", "stage", stage, "reason", domain.ErrExportNotFound)
		return Result{}, false, nil
	}
	e.logger.Info("export link found", "stage", stage, "kind", best.Kind, "url", best.URL)

	for _, link := range links.Candidates() {
		body, err := e.fetcher.Fetch(ctx, link.URL, e.opts.BulletinURL)
		if err != nil {
			e.metrics.ExportDownloads.WithLabelValues(string(link.Kind), "failed").Inc()
			if ctx.Err() != nil {
				return Result{}, false, ctx.Err()
			}
			e.logger.Warn("export download failed", "kind", link.Kind, "url", link.URL, "error", err)
			continue
		}
		e.metrics.ExportDownloads.WithLabelValues(string(link.Kind), "success").Inc()

		files, err := e.store.SaveExport(ctx, domain.Export{Kind: link.Kind, URL: link.URL, Body: body})
		if err != nil {
			return Result{}, false, fmt.Errorf("save %s export: %w", link.Kind, err)
		}
		e.logger.Info("export downloaded", "kind", link.Kind, "url", link.URL, "bytes", len(body))
		return Result{Source: SourceExport, ExportKind: link.Kind, Files: files}, true, nil
	}
	return Result{}, false, nil
}

// fail dumps markup for diagnosis and returns an error wrapping
// domain.ErrNoDataProduced and cause.
func (e *Extractor) fail(ctx context.Context, page string, cause error) (Result, error) {
	var res Result
	path, err := e.store.SaveDiagnostic(ctx, page)
	if err != nil {
		e.logger.Error("save diagnostic markup failed", "error", err)
	} else {
		res.Files = []string{path}
		e.logger.Error("no data produced, markup saved for diagnosis", "path", path)
	}
	if errors.Is(cause, domain.ErrNoDataProduced) {
		return res, cause
	}
	return res, fmt.Errorf("%w: %w", domain.ErrNoDataProduced, cause)
}

// backoffFor returns the linear delay before retry number attempt+1.
func backoffFor(attempt int, step time.Duration) time.Duration {
	return time.Duration(attempt) * step
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
