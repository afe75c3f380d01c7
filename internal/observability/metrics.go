package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "emparn_fetch"

// Metrics holds the Prometheus collectors for one fetch run. They live in a
// dedicated registry so a run can be pushed or written to a textfile without
// the Go runtime collectors.
type Metrics struct {
	Registry *prometheus.Registry

	PageFetchAttempts     prometheus.Counter
	ExportDownloads       *prometheus.CounterVec // labels: kind={csv,txt}, outcome={success,failed}
	TabsScraped           *prometheus.CounterVec // labels: region, outcome={success,failed}
	ObservationsScraped   *prometheus.CounterVec // labels: region
	ObservationsPublished prometheus.Counter
	RunDuration           prometheus.Histogram
	RunSucceeded          prometheus.Gauge
	LastSuccess           prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
}

// NewMetrics creates all run metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PageFetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetch_attempts_total",
			Help:      "HTTP attempts made to load the bulletin page.",
		}),
		ExportDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_downloads_total",
			Help:      "Official export downloads by kind and outcome.",
		}, []string{"kind", "outcome"}),
		TabsScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tabs_scraped_total",
			Help:      "Region tabs processed by outcome.",
		}, []string{"region", "outcome"}),
		ObservationsScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_scraped_total",
			Help:      "Observations extracted from rendered tables.",
		}, []string{"region"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Observations written to the Kafka topic.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		RunSucceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_succeeded",
			Help:      "1 when the last run produced an artifact, 0 otherwise.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that produced an artifact.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	m.Registry.MustRegister(
		m.PageFetchAttempts,
		m.ExportDownloads,
		m.TabsScraped,
		m.ObservationsScraped,
		m.ObservationsPublished,
		m.RunDuration,
		m.RunSucceeded,
		m.LastSuccess,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
	)

	return m
}

// NewMetricsForTesting returns unshared metrics for tests that never export them.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}
