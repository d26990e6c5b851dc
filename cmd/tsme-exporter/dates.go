package main

import (
	"fmt"
	"time"

	"github.com/sywesk/tsme-exporter/pkg/tsme"
	"go.uber.org/zap"
)

// resolveRange turns the --start and --end flags into dates. By default the range covers the
// last week, up to the end of yesterday.
func resolveRange(start, end string, now time.Time) (time.Time, time.Time, error) {
	from := tsme.EndOfDay(tsme.DaysAgo(now, 7))
	if start != "" {
		parsed, err := tsme.ParseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}
		from = parsed
	}

	to := tsme.EndOfDay(tsme.DaysAgo(now, 1))
	if end != "" {
		parsed, err := tsme.ParseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
		to = parsed
	}

	return from, to, nil
}

func logSummary(providerName string, from, to time.Time) {
	zap.L().Info("extraction settings",
		zap.String("provider", providerName),
		zap.String("email", getConfig().Email),
		zap.String("password", "***"),
		zap.String("from", from.Format(tsme.DateLayout)),
		zap.String("to", to.Format(tsme.DateLayout)))
}
