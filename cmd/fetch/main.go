// Command emparn-fetch downloads the EMPARN daily rainfall bulletin once and
// writes it under the output directory. It exits non-zero when no artifact
// was produced.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pluviorn/emparn-fetch/internal/adapter/browser"
	"github.com/pluviorn/emparn-fetch/internal/adapter/filesystem"
	"github.com/pluviorn/emparn-fetch/internal/adapter/httpfetch"
	kafkaadapter "github.com/pluviorn/emparn-fetch/internal/adapter/kafka"
	"github.com/pluviorn/emparn-fetch/internal/adapter/mapbox"
	"github.com/pluviorn/emparn-fetch/internal/config"
	"github.com/pluviorn/emparn-fetch/internal/observability"
	"github.com/pluviorn/emparn-fetch/internal/pipeline"
)

// flushTimeout bounds metric delivery after the run, even when the run
// itself was interrupted.
const flushTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "emparn-fetch",
		Short:         "Fetch the EMPARN daily rainfall bulletin as CSV/JSON",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				slog.Error("failed to load config", "error", err)
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				slog.Error("invalid flags", "error", err)
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("url", "", "bulletin page URL (overrides BULLETIN_URL)")
	cmd.Flags().String("output-dir", "", "directory for output files (overrides OUTPUT_DIR)")
	cmd.Flags().Bool("no-browser", false, "disable the headless browser fallback")
	cmd.Flags().Bool("no-archive", false, "skip the date-stamped archive copy of exports")
	return cmd
}

// applyFlags overrides cfg with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BulletinURL, _ = flags.GetString("url")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if noBrowser, _ := flags.GetBool("no-browser"); noBrowser {
		cfg.BrowserEnabled = false
	}
	if noArchive, _ := flags.GetBool("no-archive"); noArchive {
		cfg.Archive = false
	}
	return cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg).With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	fetcher := httpfetch.NewClient(cfg.UserAgent, cfg.HTTPTimeout, logger)
	store := filesystem.NewStore(cfg.OutputDir, cfg.Archive, logger)

	var options []pipeline.Option

	if cfg.BrowserEnabled {
		renderer := browser.NewRenderer(browser.Config{
			RemoteURL:         cfg.BrowserURL,
			Stealth:           cfg.BrowserStealth,
			UserAgent:         cfg.UserAgent,
			NavigationTimeout: cfg.NavigationTimeout,
			Logger:            logger,
		})
		defer func() {
			if err := renderer.Close(); err != nil {
				logger.Error("browser close error", "error", err)
			}
		}()
		options = append(options, pipeline.WithRenderer(renderer))
	} else {
		logger.Info("browser fallback disabled")
	}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocoder cache", "error", err)
			return err
		}
		options = append(options, pipeline.WithGeocoder(geocoder))
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		options = append(options, pipeline.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	extractor := pipeline.New(fetcher, store, pipeline.Options{
		BulletinURL:   cfg.BulletinURL,
		FetchAttempts: cfg.FetchAttempts,
		FetchBackoff:  cfg.FetchBackoff,
		TabTimeout:    cfg.TabTimeout,
	}, logger, metrics, options...)

	start := time.Now()
	res, runErr := extractor.Run(ctx)
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	if runErr == nil {
		metrics.RunSucceeded.Set(1)
		metrics.LastSuccess.SetToCurrentTime()
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := metrics.Flush(flushCtx, cfg.PushgatewayURL, cfg.MetricsTextfile, logger); err != nil {
		logger.Warn("metrics flush failed", "error", err)
	}

	if runErr != nil {
		logger.Error("bulletin fetch failed", "error", runErr, "files", res.Files)
		return runErr
	}
	logger.Info("bulletin fetch complete",
		"source", res.Source,
		"export_kind", res.ExportKind,
		"observations", len(res.Observations),
		"files", res.Files,
		"duration", time.Since(start),
	)
	return nil
}
