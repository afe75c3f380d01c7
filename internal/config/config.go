package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultBulletinURL is EMPARN's daily rainfall bulletin page.
const DefaultBulletinURL = "https://meteorologia.emparn.rn.gov.br/boletim/diario"

// Config holds all run settings, populated from environment variables.
type Config struct {
	BulletinURL string
	UserAgent   string
	OutputDir   string
	Archive     bool
	LogLevel    string
	LogFormat   string

	// Fetch behaviour.
	HTTPTimeout   time.Duration
	FetchAttempts int
	FetchBackoff  time.Duration

	// Headless browser fallback.
	BrowserEnabled    bool
	BrowserURL        string
	BrowserStealth    bool
	NavigationTimeout time.Duration
	TabTimeout        time.Duration

	// Metrics delivery for the batch job.
	PushgatewayURL  string
	MetricsTextfile string

	// Optional Kafka sink for scraped observations.
	KafkaBrokers []string
	KafkaTopic   string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	fetchBackoff, err := parseDuration("FETCH_BACKOFF", "2s")
	if err != nil {
		return nil, err
	}
	navTimeout, err := parseDuration("NAVIGATION_TIMEOUT", "120s")
	if err != nil {
		return nil, err
	}
	tabTimeout, err := parseDuration("TAB_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	fetchAttempts, err := parseFetchAttempts()
	if err != nil {
		return nil, err
	}

	archive, err := parseBool("ARCHIVE_ENABLED", true)
	if err != nil {
		return nil, err
	}
	browserEnabled, err := parseBool("BROWSER_ENABLED", true)
	if err != nil {
		return nil, err
	}
	browserStealth, err := parseBool("BROWSER_STEALTH", true)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		BulletinURL: sharedcfg.EnvOrDefault("BULLETIN_URL", DefaultBulletinURL),
		UserAgent:   sharedcfg.EnvOrDefault("USER_AGENT", "PluvioRN-Bot/1.0 (+github actions)"),
		OutputDir:   sharedcfg.EnvOrDefault("OUTPUT_DIR", "data"),
		Archive:     archive,
		LogLevel:    sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		HTTPTimeout:   httpTimeout,
		FetchAttempts: fetchAttempts,
		FetchBackoff:  fetchBackoff,

		BrowserEnabled:    browserEnabled,
		BrowserURL:        os.Getenv("BROWSER_URL"),
		BrowserStealth:    browserStealth,
		NavigationTimeout: navTimeout,
		TabTimeout:        tabTimeout,

		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "rainfall-observations"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that also apply after CLI flag overrides.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BulletinURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("BULLETIN_URL must be an absolute http(s) URL")
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.UserAgent == "" {
		return errors.New("USER_AGENT is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return errors.New("LOG_FORMAT must be json or text")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

// KafkaEnabled reports whether observations should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}

func parseFetchAttempts() (int, error) {
	s := sharedcfg.EnvOrDefault("FETCH_ATTEMPTS", "3")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 10 {
		return 0, fmt.Errorf("invalid FETCH_ATTEMPTS: must be 1-10, got %q", s)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
