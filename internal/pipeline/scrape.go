package pipeline

import (
	"context"
	"fmt"

	"github.com/pluviorn/emparn-fetch/internal/domain"
	"github.com/pluviorn/emparn-fetch/internal/markup"
)

// scrape renders the bulletin page, rechecks it for export links and
// otherwise collects every region's table.
func (e *Extractor) scrape(ctx context.Context, static string) (Result, error) {
	page, err := e.renderer.Open(ctx, e.opts.BulletinURL)
	if err != nil {
		e.logger.Error("render bulletin page failed", "error", err)
		return e.fail(ctx, static, fmt.Errorf("render bulletin page: %w", err))
	}
	defer func() {
		if err := page.Close(); err != nil {
			e.logger.Warn("close rendered page failed", "error", err)
		}
	}()

	rendered, err := page.Content(ctx)
	if err != nil {
		e.logger.Warn("read rendered markup failed", "error", err)
	} else {
		res, ok, err := e.exportFrom(ctx, rendered, "rendered")
		if err != nil || ok {
			return res, err
		}
	}

	var all []domain.Observation
	for _, region := range e.opts.Regions {
		obs, err := e.scrapeRegion(ctx, page, region)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, fmt.Errorf("scrape %s: %w", region.ID, ctx.Err())
			}
			e.metrics.TabsScraped.WithLabelValues(region.ID, "failed").Inc()
			e.logger.Warn("region tab failed", "region", region.ID, "error", err)
			continue
		}
		e.metrics.TabsScraped.WithLabelValues(region.ID, "success").Inc()
		e.metrics.ObservationsScraped.WithLabelValues(region.ID).Add(float64(len(obs)))
		e.logger.Info("region tab scraped", "region", region.ID, "rows", len(obs))
		all = append(all, obs...)
	}

	if len(all) == 0 {
		diag := rendered
		if latest, err := page.Content(ctx); err == nil {
			diag = latest
		}
		if diag == "" {
			diag = static
		}
		return e.fail(ctx, diag, domain.ErrNoDataProduced)
	}

	if e.geocoder != nil {
		for i := range all {
			all[i] = domain.EnrichWithGeocoding(ctx, all[i], e.geocoder, e.logger)
		}
	}

	files, err := e.store.SaveObservations(ctx, all)
	if err != nil {
		return Result{}, fmt.Errorf("save observations: %w", err)
	}
	e.logger.Info("tables scraped", "observations", len(all))

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, all); err != nil {
			e.logger.Warn("publish observations failed", "error", err)
		} else {
			e.metrics.ObservationsPublished.Add(float64(len(all)))
		}
	}

	return Result{Source: SourceDOM, Observations: all, Files: files}, nil
}

// scrapeRegion opens one region tab and parses its table. The whole tab
// is bounded by the tab timeout.
func (e *Extractor) scrapeRegion(ctx context.Context, page domain.Page, region domain.Region) ([]domain.Observation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.TabTimeout)
	defer cancel()

	present, err := page.Has(ctx, region.TabSelector())
	if err != nil {
		return nil, fmt.Errorf("look up tab: %w", err)
	}
	if present {
		if err := page.Click(ctx, region.TabSelector()); err != nil {
			return nil, fmt.Errorf("click tab: %w", err)
		}
	} else {
		e.logger.Debug("region tab link missing, waiting for content", "region", region.ID)
	}

	if err := page.WaitFor(ctx, region.TableSelector()); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTableNotRendered, err)
	}

	fragment, err := page.HTML(ctx, region.ContentSelector())
	if err != nil {
		return nil, fmt.Errorf("read tab content: %w", err)
	}

	table, err := markup.ParseTable(fragment)
	if err != nil {
		return nil, err
	}
	return domain.BuildObservations(region.Label, table), nil
}
