package meterfetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sywesk/tsme-exporter/pkg/tsme"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultPause = 750 * time.Millisecond

var (
	ErrNoCompatibleMeter = fmt.Errorf("there is no compatible water meter in the account")
	ErrMeterNotFound     = fmt.Errorf("meter not found in the account")
)

// MeteringClient is the part of tsme.Client a Fetcher needs.
type MeteringClient interface {
	ListMeterIDs(ctx context.Context) ([]string, error)
	GetMetering(ctx context.Context, meterID string, from, to *time.Time) ([]tsme.MeteringRecord, error)
}

// MeterData is the series fetched for one meter.
type MeterData struct {
	MeterID string
	Records []tsme.MeteringRecord
}

// LastIndex returns the most recent record carrying an index.
func (m MeterData) LastIndex() (tsme.MeteringRecord, bool) {
	for i := len(m.Records) - 1; i >= 0; i-- {
		if m.Records[i].Index != nil {
			return m.Records[i], true
		}
	}
	return tsme.MeteringRecord{}, false
}

type Settings struct {
	// Pause is the minimum delay between two meters' telemetry requests.
	Pause time.Duration
}

/*
Fetcher runs one extraction over every meter of an account, one request at a time.

The portal is not meant to be scraped, so consecutive telemetry requests are spaced by
Settings.Pause.
*/
type Fetcher struct {
	client  MeteringClient
	limiter *rate.Limiter
}

func New(client MeteringClient, settings Settings) *Fetcher {
	if settings.Pause <= 0 {
		settings.Pause = DefaultPause
	}

	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(settings.Pause), 1),
	}
}

// FetchAll fetches the series of every compatible meter of the account.
func (f *Fetcher) FetchAll(ctx context.Context, from, to *time.Time) ([]MeterData, error) {
	meterIDs, err := f.client.ListMeterIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meters: %w", err)
	}

	if len(meterIDs) == 0 {
		return nil, ErrNoCompatibleMeter
	}
	zap.L().Info("found meters", zap.Strings("meter_ids", meterIDs))

	var result []MeterData
	for _, meterID := range meterIDs {
		data, err := f.fetchMeter(ctx, meterID, from, to)
		if err != nil {
			return nil, err
		}
		result = append(result, data)
	}

	zap.L().Info("fetched all meters", zap.Int("meter_count", len(result)))
	return result, nil
}

// FetchOne fetches the series of meterID after checking it belongs to the account.
func (f *Fetcher) FetchOne(ctx context.Context, meterID string, from, to *time.Time) (MeterData, error) {
	meterIDs, err := f.client.ListMeterIDs(ctx)
	if err != nil {
		return MeterData{}, fmt.Errorf("failed to list meters: %w", err)
	}

	found := false
	for _, id := range meterIDs {
		if id == meterID {
			found = true
			break
		}
	}

	if !found {
		return MeterData{}, fmt.Errorf("%w: %s", ErrMeterNotFound, meterID)
	}

	return f.fetchMeter(ctx, meterID, from, to)
}

func (f *Fetcher) fetchMeter(ctx context.Context, meterID string, from, to *time.Time) (MeterData, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return MeterData{}, fmt.Errorf("failed to wait before fetching meter %s: %w", meterID, err)
	}

	records, err := f.client.GetMetering(ctx, meterID, from, to)
	if err != nil {
		return MeterData{}, fmt.Errorf("failed to get metering for meter %s: %w", meterID, err)
	}

	data := MeterData{MeterID: meterID, Records: records}
	updateMeterMetrics(data)

	zap.L().Info("fetched meter", zap.String("meter_id", meterID), zap.Int("record_count", len(records)))
	return data, nil
}
