package suite

import (
	"fmt"

	"dataval/internal/config"
	"dataval/internal/metrics"
	"dataval/internal/metrics/datadog"
	"dataval/internal/metrics/prompush"
)

// MetricsBackend builds the backend selected by cfg. It returns nil for the
// "none" backend; pass the result to metrics.SetBackend.
func MetricsBackend(cfg config.Metrics, suiteName string) (metrics.Backend, error) {
	switch cfg.Backend {
	case "", config.MetricsNone:
		return nil, nil
	case config.MetricsPushgateway:
		b, err := prompush.NewBackend(suiteName, cfg.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.MetricsDatadog:
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			Namespace:  "dataval.",
			GlobalTags: []string{"suite:" + suiteName},
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown metrics backend %q", cfg.Backend)
}
