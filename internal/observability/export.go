package observability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// pushJob is the Pushgateway job label for fetch runs.
const pushJob = "emparn_fetch"

// Flush delivers the run's metrics. A batch job has no scrape endpoint, so
// metrics go to a Pushgateway (pushURL) and/or a node-exporter textfile
// (textfile). Empty targets are skipped.
func (m *Metrics) Flush(ctx context.Context, pushURL, textfile string, logger *slog.Logger) error {
	if pushURL != "" {
		if err := push.New(pushURL, pushJob).Gatherer(m.Registry).PushContext(ctx); err != nil {
			return fmt.Errorf("push metrics to %s: %w", pushURL, err)
		}
		logger.Debug("metrics pushed", "url", pushURL)
	}
	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, m.Registry); err != nil {
			return fmt.Errorf("write metrics textfile %s: %w", textfile, err)
		}
		logger.Debug("metrics textfile written", "path", textfile)
	}
	return nil
}
