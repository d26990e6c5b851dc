package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/sywesk/tsme-exporter/pkg/output"
	"github.com/sywesk/tsme-exporter/pkg/tsme"
	"go.uber.org/zap"
)

type extractFlags struct {
	rangeFlags
	format string
}

func (f *extractFlags) register(cmd *cobra.Command) {
	f.rangeFlags.register(cmd)
	cmd.Flags().StringVarP(&f.format, "format", "f", string(output.JSONFormat), "The output format to use (json, csv or table).")
}

var (
	extractOpts    extractFlags
	extractAllOpts extractFlags
)

func init() {
	extractOpts.register(extractCmd)
	extractAllOpts.register(extractAllCmd)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(extractAllCmd)
	rootCmd.AddCommand(providersCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <meter-id>",
	Short: "Launch data extraction for a specific meter id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meterID := args[0]

		format, err := output.ParseFormat(extractOpts.format)
		if err != nil {
			return err
		}

		from, to, err := resolveRange(extractOpts.start, extractOpts.end, time.Now())
		if err != nil {
			return err
		}

		providerName := extractOpts.providerName()
		logSummary(providerName, from, to)
		zap.L().Info("launching extraction", zap.String("meter_id", meterID))

		fetcher, err := newFetcher(providerName)
		if err != nil {
			return err
		}

		data, err := fetcher.FetchOne(cmd.Context(), meterID, &from, &to)
		if err != nil {
			return err
		}

		return output.WriteMeter(os.Stdout, format, data)
	},
}

var extractAllCmd = &cobra.Command{
	Use:   "extract-all",
	Short: "Launch data extraction for all water meters in the account.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(extractAllOpts.format)
		if err != nil {
			return err
		}

		from, to, err := resolveRange(extractAllOpts.start, extractAllOpts.end, time.Now())
		if err != nil {
			return err
		}

		providerName := extractAllOpts.providerName()
		logSummary(providerName, from, to)
		zap.L().Info("launching extraction of all water meters")

		fetcher, err := newFetcher(providerName)
		if err != nil {
			return err
		}

		data, err := fetcher.FetchAll(cmd.Context(), &from, &to)
		if err != nil {
			return err
		}

		return output.WriteMeters(os.Stdout, format, data)
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the supported providers.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range tsme.Providers() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
