package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/sywesk/tsme-exporter/pkg/homeassistant"
	"github.com/sywesk/tsme-exporter/pkg/meterfetcher"
	"go.uber.org/zap"
)

var exportOpts rangeFlags

func init() {
	exportOpts.register(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch all water meters and export them to a Prometheus Pushgateway and/or Home Assistant.",
	Long: "Fetch all water meters and export them to a Prometheus Pushgateway and/or Home Assistant.\n" +
		"Each run opens a single portal session, so it is meant to be scheduled (cron, systemd timer).",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := resolveRange(exportOpts.start, exportOpts.end, time.Now())
		if err != nil {
			return err
		}

		providerName := exportOpts.providerName()
		logSummary(providerName, from, to)

		fetcher, err := newFetcher(providerName)
		if err != nil {
			return err
		}

		data, err := fetcher.FetchAll(cmd.Context(), &from, &to)
		if err != nil {
			return err
		}

		if err := pushPrometheusMetrics(); err != nil {
			return err
		}

		return publishToHomeAssistant(data)
	},
}

func publishToHomeAssistant(data []meterfetcher.MeterData) error {
	cfg := getConfig()

	if !cfg.HomeAssistant.Enabled {
		zap.L().Info("homeassistant integration is disabled")
		return nil
	}

	ha := homeassistant.New(homeassistant.MQTTParams{
		Host:     cfg.HomeAssistant.BrokerAddr,
		Username: cfg.HomeAssistant.Username,
		Password: cfg.HomeAssistant.Password,
	})
	if err := ha.Connect(); err != nil {
		return err
	}
	defer ha.Close()

	if err := ha.Publish(data); err != nil {
		return err
	}

	zap.L().Info("published meters to homeassistant", zap.Int("meter_count", len(data)))
	return nil
}
