package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sywesk/tsme-exporter/pkg/meterfetcher"
	"github.com/sywesk/tsme-exporter/pkg/tsme"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "tsme-exporter",
	Short:         "tsme-exporter retrieves water meter data from TSME group portals (Suez, ...).",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if !getConfig().Debug {
			zapCfg.Level.SetLevel(zap.InfoLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional path to a YAML configuration file.")
}

// rangeFlags are the options shared by the commands that fetch metering data.
type rangeFlags struct {
	start    string
	end      string
	provider string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.start, "start", "s", "", "The starting date (YYYY-MM-DD).")
	cmd.Flags().StringVarP(&f.end, "end", "e", "", "The ending date (YYYY-MM-DD).")
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "", "The provider to use (defaults to the configured one).")
}

func (f *rangeFlags) providerName() string {
	if f.provider != "" {
		return f.provider
	}
	return getConfig().Provider
}

// newFetcher builds the provider client and its fetcher. It fails on missing credentials.
func newFetcher(providerName string) (*meterfetcher.Fetcher, error) {
	cfg := getConfig()

	client, err := tsme.NewProviderClient(providerName, cfg.Email, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", providerName, err)
	}

	return meterfetcher.New(client, meterfetcher.Settings{Pause: cfg.pauseDuration()}), nil
}
