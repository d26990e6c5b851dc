package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sywesk/tsme-exporter/pkg/meterfetcher"
	"go.uber.org/zap"
)

func pushPrometheusMetrics() error {
	cfg := getConfig().Prometheus
	if cfg.PushgatewayURL == "" {
		zap.L().Info("prometheus push is disabled")
		return nil
	}

	err := push.New(cfg.PushgatewayURL, cfg.Job).
		Gatherer(meterfetcher.Registry).
		Push()
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", cfg.PushgatewayURL, err)
	}

	zap.L().Info("pushed metrics", zap.String("url", cfg.PushgatewayURL), zap.String("job", cfg.Job))
	return nil
}
